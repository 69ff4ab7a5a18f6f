// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/campuswatch/campuswatch/internal/models"
)

// PresenceStore holds the derived current-state record per identity.
// At most one record exists per identifier. Students keep their record
// across exits (is_inside=false); visitor records are deleted on exit.
type PresenceStore struct {
	db *badger.DB
}

// NewPresenceStore creates a presence store over an open Badger database.
func NewPresenceStore(db *badger.DB) *PresenceStore {
	return &PresenceStore{db: db}
}

// Get retrieves the presence record for an identifier.
// Returns ErrPresenceNotFound when no record exists.
func (s *PresenceStore) Get(ctx context.Context, identifier string) (*models.PresenceRecord, error) {
	var rec models.PresenceRecord

	err := s.db.View(func(txn *badger.Txn) error {
		key := []byte(presenceKeyPrefix + identifier)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPresenceNotFound
		}
		if err != nil {
			return fmt.Errorf("get presence: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// MarkInside upserts the record as inside campus: is_inside is forced true,
// last_entry_time is set to at, and last_exit_time is cleared. The rest of
// the record (identity, name, phone, visitor fields) comes from rec.
func (s *PresenceStore) MarkInside(ctx context.Context, rec models.PresenceRecord, at time.Time) error {
	at = at.UTC()
	rec.IsInside = true
	rec.LastEntryTime = &at
	rec.LastExitTime = nil

	return s.put(&rec)
}

// MarkOutside upserts a student record as outside campus: is_inside is
// forced false and last_exit_time is set to at. last_entry_time from any
// existing record is preserved; when no record exists one is created
// (a student may exit without a tracked entry).
//
// Visitor exits do not use MarkOutside; their record is removed with Delete.
func (s *PresenceStore) MarkOutside(ctx context.Context, rec models.PresenceRecord, at time.Time) error {
	at = at.UTC()

	existing, err := s.Get(ctx, rec.Identifier)
	if err != nil && !errors.Is(err, ErrPresenceNotFound) {
		return err
	}
	if existing != nil {
		rec.LastEntryTime = existing.LastEntryTime
	}

	rec.IsInside = false
	rec.LastExitTime = &at

	return s.put(&rec)
}

// Delete removes the presence record for an identifier.
// Returns ErrPresenceNotFound when no record exists.
func (s *PresenceStore) Delete(ctx context.Context, identifier string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(presenceKeyPrefix + identifier)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPresenceNotFound
		} else if err != nil {
			return fmt.Errorf("get presence: %w", err)
		}
		return txn.Delete(key)
	})
}

// VisitorsInside returns the presence records of all visitor parties
// currently inside campus.
func (s *PresenceStore) VisitorsInside(ctx context.Context) ([]models.PresenceRecord, error) {
	return s.scan(func(rec *models.PresenceRecord) bool {
		return rec.IdentityType == models.IdentityVisitor && rec.IsInside
	})
}

// StudentsOutside returns the presence records of all students currently
// outside campus.
func (s *PresenceStore) StudentsOutside(ctx context.Context) ([]models.PresenceRecord, error) {
	return s.scan(func(rec *models.PresenceRecord) bool {
		return rec.IdentityType == models.IdentityStudent && !rec.IsInside
	})
}

// put writes a presence record keyed by its identifier.
func (s *PresenceStore) put(rec *models.PresenceRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal presence: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(presenceKeyPrefix + rec.Identifier)
		return txn.Set(key, data)
	})
}

// scan iterates all presence records and collects those matching keep.
func (s *PresenceStore) scan(keep func(*models.PresenceRecord) bool) ([]models.PresenceRecord, error) {
	records := []models.PresenceRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(presenceKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var rec models.PresenceRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				continue
			}

			if keep(&rec) {
				records = append(records, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan presence: %w", err)
	}

	return records, nil
}
