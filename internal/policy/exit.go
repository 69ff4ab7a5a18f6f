// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package policy

import (
	"errors"
	"fmt"
	"time"

	"github.com/campuswatch/campuswatch/internal/models"
)

// Exit policy violations. These block the exit before anything is written.
var (
	// ErrInvalidPurpose is returned for purposes other than MARKET or HOME.
	ErrInvalidPurpose = errors.New("purpose must be MARKET or HOME")

	// ErrReturnByPast is returned when the return-by deadline is not in
	// the future.
	ErrReturnByPast = errors.New("return_by must be in the future")

	// ErrReturnByTooFar is returned when a MARKET deadline exceeds the
	// market window.
	ErrReturnByTooFar = errors.New("return_by exceeds the market window")
)

// DefaultMarketWindow bounds how far out a MARKET return-by deadline may be.
const DefaultMarketWindow = 12 * time.Hour

// ExitPolicy validates exit requests and builds the permission artifact
// recorded for the student's next entry.
type ExitPolicy struct {
	marketWindow time.Duration
}

// NewExitPolicy creates an exit policy. A non-positive marketWindow falls
// back to DefaultMarketWindow.
func NewExitPolicy(marketWindow time.Duration) *ExitPolicy {
	if marketWindow <= 0 {
		marketWindow = DefaultMarketWindow
	}
	return &ExitPolicy{marketWindow: marketWindow}
}

// Validate checks purpose and return-by deadline against the exit rules:
//
//   - purpose must be MARKET or HOME
//   - returnBy must be strictly in the future
//   - MARKET: returnBy must be at most now+window (inclusive boundary)
//   - HOME: no upper bound
//
// All comparisons are UTC. A nil error means the exit may proceed.
func (p *ExitPolicy) Validate(purpose string, returnBy, now time.Time) error {
	returnBy = returnBy.UTC()
	now = now.UTC()

	switch purpose {
	case models.PurposeMarket:
		if !returnBy.After(now) {
			return ErrReturnByPast
		}
		if returnBy.After(now.Add(p.marketWindow)) {
			return fmt.Errorf("%w (max %s)", ErrReturnByTooFar, p.marketWindow)
		}
		return nil
	case models.PurposeHome:
		if !returnBy.After(now) {
			return ErrReturnByPast
		}
		return nil
	default:
		return ErrInvalidPurpose
	}
}

// BuildPermission constructs the exit permission artifact for a validated
// exit. CreatedAt is the server-assigned UTC timestamp.
func (p *ExitPolicy) BuildPermission(rollNumber, purpose string, returnBy time.Time, gateNumber int, now time.Time) models.ExitPermission {
	return models.ExitPermission{
		RollNumber: rollNumber,
		Purpose:    purpose,
		ReturnBy:   returnBy.UTC(),
		GateNumber: gateNumber,
		CreatedAt:  now.UTC(),
	}
}
