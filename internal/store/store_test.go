// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package store

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
)

// newTestDB opens an in-memory Badger database closed at test cleanup.
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close badger: %v", err)
		}
	})
	return db
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open in-memory: %v", err)
	}
	defer db.Close()

	if err := db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	}); err != nil {
		t.Errorf("write to opened db: %v", err)
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatalf("Open on-disk: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
