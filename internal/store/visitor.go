// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/campuswatch/campuswatch/internal/models"
)

// VisitorStore holds registered visitor profiles, keyed by the generated
// visitor id. Profiles exist only while the party is inside campus: created
// at entry, deleted at exit.
type VisitorStore struct {
	db *badger.DB
}

// NewVisitorStore creates a visitor store over an open Badger database.
func NewVisitorStore(db *badger.DB) *VisitorStore {
	return &VisitorStore{db: db}
}

// Create stores a new visitor profile.
func (s *VisitorStore) Create(ctx context.Context, profile models.VisitorProfile) error {
	data, err := json.Marshal(&profile)
	if err != nil {
		return fmt.Errorf("marshal visitor: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(visitorKeyPrefix + profile.VisitorID)
		return txn.Set(key, data)
	})
}

// Get retrieves a visitor profile by id.
// Returns ErrVisitorNotFound for unknown ids.
func (s *VisitorStore) Get(ctx context.Context, visitorID string) (*models.VisitorProfile, error) {
	var profile models.VisitorProfile

	err := s.db.View(func(txn *badger.Txn) error {
		key := []byte(visitorKeyPrefix + visitorID)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrVisitorNotFound
		}
		if err != nil {
			return fmt.Errorf("get visitor: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// Delete removes a visitor profile.
// Returns ErrVisitorNotFound for unknown ids.
func (s *VisitorStore) Delete(ctx context.Context, visitorID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(visitorKeyPrefix + visitorID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrVisitorNotFound
		} else if err != nil {
			return fmt.Errorf("get visitor: %w", err)
		}
		return txn.Delete(key)
	})
}
