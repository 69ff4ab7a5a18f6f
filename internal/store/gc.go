// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/campuswatch/campuswatch/internal/logging"
)

// DefaultGCInterval is how often value-log garbage collection runs.
const DefaultGCInterval = 10 * time.Minute

// GCService runs Badger value-log garbage collection on a ticker. It
// implements suture.Service and exits cleanly on context cancellation.
// GC is skipped automatically for in-memory databases (ErrNoRewrite).
type GCService struct {
	db       *badger.DB
	interval time.Duration
}

// NewGCService creates a GC service for an open Badger database.
// A non-positive interval falls back to DefaultGCInterval.
func NewGCService(db *badger.DB, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &GCService{db: db, interval: interval}
}

// Serve runs the GC loop until the context is canceled.
func (s *GCService) Serve(ctx context.Context) error {
	logger := logging.WithComponent("store-gc")
	logger.Debug().Dur("interval", s.interval).Msg("Badger GC loop started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("Badger GC loop stopping")
			return ctx.Err()
		case <-ticker.C:
			// Rerun until a pass reclaims nothing.
			for {
				err := s.db.RunValueLogGC(0.5)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					logger.Warn().Err(err).Msg("Badger value log GC failed")
					break
				}
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *GCService) String() string {
	return "badger-gc"
}
