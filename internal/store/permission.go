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

// PermissionStore holds at most one outstanding exit permission per student,
// keyed by roll number. A new exit overwrites any outstanding permission;
// the next entry consumes (reads and deletes) it.
type PermissionStore struct {
	db *badger.DB
}

// NewPermissionStore creates a permission store over an open Badger database.
func NewPermissionStore(db *badger.DB) *PermissionStore {
	return &PermissionStore{db: db}
}

// Put stores the exit permission for a student, replacing any outstanding one.
func (s *PermissionStore) Put(ctx context.Context, perm models.ExitPermission) error {
	data, err := json.Marshal(&perm)
	if err != nil {
		return fmt.Errorf("marshal permission: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(permissionKeyPrefix + perm.RollNumber)
		return txn.Set(key, data)
	})
}

// Get retrieves the outstanding permission for a student without consuming it.
// Returns ErrPermissionNotFound when none is outstanding.
func (s *PermissionStore) Get(ctx context.Context, rollNumber string) (*models.ExitPermission, error) {
	var perm models.ExitPermission

	err := s.db.View(func(txn *badger.Txn) error {
		key := []byte(permissionKeyPrefix + rollNumber)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPermissionNotFound
		}
		if err != nil {
			return fmt.Errorf("get permission: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &perm)
		})
	})
	if err != nil {
		return nil, err
	}

	return &perm, nil
}

// Consume reads and deletes the outstanding permission in one transaction,
// making it one-time use. Returns ErrPermissionNotFound when none is
// outstanding.
func (s *PermissionStore) Consume(ctx context.Context, rollNumber string) (*models.ExitPermission, error) {
	var perm models.ExitPermission

	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(permissionKeyPrefix + rollNumber)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPermissionNotFound
		}
		if err != nil {
			return fmt.Errorf("get permission: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &perm)
		})
		if err != nil {
			return fmt.Errorf("unmarshal permission: %w", err)
		}

		return txn.Delete(key)
	})
	if err != nil {
		return nil, err
	}

	return &perm, nil
}
