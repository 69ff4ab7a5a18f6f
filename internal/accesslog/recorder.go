// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package accesslog

import (
	"context"
	"fmt"

	"github.com/campuswatch/campuswatch/internal/logging"
	"github.com/campuswatch/campuswatch/internal/metrics"
	"github.com/campuswatch/campuswatch/internal/models"
)

// Broadcaster pushes recorded events to live subscribers. The websocket hub
// implements it; a nil broadcaster disables the feed.
type Broadcaster interface {
	BroadcastEvent(entry *models.AccessLogEntry)
}

// Recorder is the single write path for access events: it appends to the
// log store, updates gate metrics, and feeds the live event stream. The
// append must succeed for the event to count; broadcast and metrics are
// best-effort side channels.
type Recorder struct {
	store       *Store
	broadcaster Broadcaster
}

// NewRecorder creates a recorder. broadcaster may be nil.
func NewRecorder(store *Store, broadcaster Broadcaster) *Recorder {
	return &Recorder{store: store, broadcaster: broadcaster}
}

// Record persists one access event and fans it out.
func (r *Recorder) Record(ctx context.Context, entry *models.AccessLogEntry) error {
	if err := r.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("record access event: %w", err)
	}

	metrics.RecordAccessEvent(entry.IdentityType, entry.EventType, entry.GateNumber, entry.Violation != nil)

	if r.broadcaster != nil {
		r.broadcaster.BroadcastEvent(entry)
	}

	logging.Ctx(ctx).Debug().
		Str("event_type", entry.EventType).
		Str("identity_type", entry.IdentityType).
		Str("identifier", entry.Identifier).
		Int("gate", entry.GateNumber).
		Msg("Access event recorded")

	return nil
}
