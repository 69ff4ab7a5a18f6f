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

// UserStore holds guard and admin accounts, keyed by username.
type UserStore struct {
	db *badger.DB
}

// NewUserStore creates a user store over an open Badger database.
func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

// Create stores a new account. Returns ErrUserExists when the username is
// already taken; the existence check and the write share one transaction.
func (s *UserStore) Create(ctx context.Context, user models.AuthUser) error {
	data, err := json.Marshal(&user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + user.Username)

		_, err := txn.Get(key)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get user: %w", err)
		}

		return txn.Set(key, data)
	})
}

// Get retrieves an account by username.
// Returns ErrUserNotFound for unknown usernames.
func (s *UserStore) Get(ctx context.Context, username string) (*models.AuthUser, error) {
	var user models.AuthUser

	err := s.db.View(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + username)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns all accounts.
func (s *UserStore) List(ctx context.Context) ([]models.AuthUser, error) {
	users := []models.AuthUser{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var user models.AuthUser
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				continue
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// Count returns the total number of accounts. Values are not prefetched;
// only keys are walked.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}
