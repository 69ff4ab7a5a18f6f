// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package accesslog

import (
	"context"
	"time"

	"github.com/campuswatch/campuswatch/internal/logging"
)

// Retention sweeper defaults. The sweeper is opt-in; with retention
// disabled the log grows unbounded, which matches the append-only contract.
const (
	DefaultRetentionMaxAge   = 365 * 24 * time.Hour
	DefaultRetentionInterval = 24 * time.Hour
)

// RetentionService periodically deletes log entries older than MaxAge.
// It implements suture.Service. Construct it only when retention is enabled
// in config.
type RetentionService struct {
	store    *Store
	maxAge   time.Duration
	interval time.Duration
}

// NewRetentionService creates a retention sweeper. Non-positive maxAge or
// interval fall back to the defaults.
func NewRetentionService(store *Store, maxAge, interval time.Duration) *RetentionService {
	if maxAge <= 0 {
		maxAge = DefaultRetentionMaxAge
	}
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	return &RetentionService{store: store, maxAge: maxAge, interval: interval}
}

// Serve runs the sweep loop until the context is canceled.
func (s *RetentionService) Serve(ctx context.Context) error {
	logger := logging.WithComponent("accesslog-retention")
	logger.Info().
		Dur("max_age", s.maxAge).
		Dur("interval", s.interval).
		Msg("Access log retention sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("Retention sweeper stopping")
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-s.maxAge)
			deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				logger.Error().Err(err).Msg("Retention sweep failed")
				continue
			}
			if deleted > 0 {
				logger.Info().
					Int64("deleted", deleted).
					Time("cutoff", cutoff).
					Msg("Retention sweep removed old entries")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *RetentionService) String() string {
	return "accesslog-retention"
}
