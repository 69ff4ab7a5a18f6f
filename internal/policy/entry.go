// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package policy implements the pure gate policies: late-entry evaluation
// against an outstanding exit permission, and exit permission validation.
// Functions here take explicit clock inputs and touch no stores, which keeps
// them trivially testable.
package policy

import (
	"time"

	"github.com/campuswatch/campuswatch/internal/models"
)

// EvaluateEntry checks an entry happening at now against the return-by
// deadline of a consumed exit permission. allowedUntil is nil when the
// student had no outstanding permission (first entry, or exit predates the
// permission system); nil never produces a violation.
//
// The boundary is inclusive: an entry at exactly allowedUntil is on time.
// All comparisons are UTC.
func EvaluateEntry(allowedUntil *time.Time, now time.Time) *models.Violation {
	if allowedUntil == nil {
		return nil
	}

	deadline := allowedUntil.UTC()
	now = now.UTC()

	if !now.After(deadline) {
		return nil
	}

	return &models.Violation{
		Type:         models.ViolationLateEntry,
		AllowedUntil: deadline,
		ActualTime:   now,
	}
}
