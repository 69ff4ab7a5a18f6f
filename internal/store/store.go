// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package store implements the BadgerDB-backed state stores: derived
// presence records, outstanding exit permissions, visitor profiles, and
// guard/admin accounts. Each store is keyed by a dedicated prefix in one
// shared database.
//
// The stores provide per-record atomicity only. Orchestration across stores
// (presence + permission + log) is deliberately not transactional; the access
// package sequences the writes and treats state guards as best-effort.
package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Storage key prefixes. One Badger database holds all four stores.
const (
	presenceKeyPrefix   = "presence:"
	permissionKeyPrefix = "permission:"
	visitorKeyPrefix    = "visitor:"
	userKeyPrefix       = "user:"
)

// Store lookup failures.
var (
	// ErrPresenceNotFound is returned when no presence record exists for
	// an identifier.
	ErrPresenceNotFound = errors.New("presence record not found")

	// ErrPermissionNotFound is returned when a student has no outstanding
	// exit permission.
	ErrPermissionNotFound = errors.New("exit permission not found")

	// ErrVisitorNotFound is returned for unknown visitor ids.
	ErrVisitorNotFound = errors.New("visitor not found")

	// ErrUserNotFound is returned for unknown account usernames.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating an account whose username
	// is already taken.
	ErrUserExists = errors.New("username already exists")
)

// Config holds Badger database settings.
type Config struct {
	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string

	// InMemory opens the database without persistence. Used in tests and
	// ephemeral deployments.
	InMemory bool
}

// Open opens the shared Badger database for all state stores.
// Badger's own logger is suppressed; store-level logging goes through
// the logging package at the call sites that care.
func Open(cfg Config) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return db, nil
}
