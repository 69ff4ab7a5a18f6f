// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/campuswatch/campuswatch/internal/models"
)

func TestExitPolicy_Validate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	p := NewExitPolicy(DefaultMarketWindow)

	tests := []struct {
		name     string
		purpose  string
		returnBy time.Time
		wantErr  error
	}{
		{"market within window", models.PurposeMarket, now.Add(3 * time.Hour), nil},
		{"market at window boundary", models.PurposeMarket, now.Add(12 * time.Hour), nil},
		{"market past window", models.PurposeMarket, now.Add(12*time.Hour + time.Minute), ErrReturnByTooFar},
		{"market in the past", models.PurposeMarket, now.Add(-time.Minute), ErrReturnByPast},
		{"market at now", models.PurposeMarket, now, ErrReturnByPast},
		{"home next week", models.PurposeHome, now.Add(7 * 24 * time.Hour), nil},
		{"home in the past", models.PurposeHome, now.Add(-time.Hour), ErrReturnByPast},
		{"unknown purpose", "VACATION", now.Add(time.Hour), ErrInvalidPurpose},
		{"lowercase purpose", "market", now.Add(time.Hour), ErrInvalidPurpose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := p.Validate(tt.purpose, tt.returnBy, now)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExitPolicy_CustomWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	p := NewExitPolicy(2 * time.Hour)

	if err := p.Validate(models.PurposeMarket, now.Add(90*time.Minute), now); err != nil {
		t.Errorf("expected 90m deadline to pass a 2h window, got %v", err)
	}
	if err := p.Validate(models.PurposeMarket, now.Add(3*time.Hour), now); !errors.Is(err, ErrReturnByTooFar) {
		t.Errorf("expected 3h deadline to fail a 2h window, got %v", err)
	}
}

func TestExitPolicy_ZeroWindowFallsBack(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	p := NewExitPolicy(0)

	if err := p.Validate(models.PurposeMarket, now.Add(11*time.Hour), now); err != nil {
		t.Errorf("expected default window to apply, got %v", err)
	}
}

func TestExitPolicy_BuildPermission(t *testing.T) {
	t.Parallel()

	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	returnBy := time.Date(2026, 8, 30, 20, 0, 0, 0, ist)

	p := NewExitPolicy(DefaultMarketWindow)
	perm := p.BuildPermission("21ABC051", models.PurposeMarket, returnBy, 3, now)

	if perm.RollNumber != "21ABC051" {
		t.Errorf("roll number = %q", perm.RollNumber)
	}
	if perm.Purpose != models.PurposeMarket {
		t.Errorf("purpose = %q", perm.Purpose)
	}
	if perm.GateNumber != 3 {
		t.Errorf("gate = %d", perm.GateNumber)
	}
	if perm.ReturnBy.Location() != time.UTC {
		t.Errorf("return_by not normalized to UTC: %v", perm.ReturnBy)
	}
	if !perm.ReturnBy.Equal(returnBy) {
		t.Errorf("return_by changed instant: %v vs %v", perm.ReturnBy, returnBy)
	}
	if !perm.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", perm.CreatedAt, now)
	}
}
