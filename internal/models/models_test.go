// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestIsValidRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role string
		want bool
	}{
		{"guard", true},
		{"admin", true},
		{"viewer", false},
		{"GUARD", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			t.Parallel()
			if got := IsValidRole(tt.role); got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestViolation_LateBy(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	v := &Violation{
		Type:         ViolationLateEntry,
		AllowedUntil: deadline,
		ActualTime:   deadline.Add(45 * time.Minute),
	}

	if got := v.LateBy(); got != 45*time.Minute {
		t.Errorf("LateBy() = %v, want 45m", got)
	}
}

func TestAuthUser_InfoOmitsHash(t *testing.T) {
	t.Parallel()

	u := AuthUser{
		Username:     "gatekeeper",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         RoleGuard,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(u.Info())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "$2a$") {
		t.Errorf("password hash leaked into user info: %s", data)
	}
}

func TestAccessLogEntry_OptionalFieldsOmitted(t *testing.T) {
	t.Parallel()

	entry := AccessLogEntry{
		ID:           "7f9c3a12",
		IdentityType: IdentityStudent,
		Identifier:   "21ABC051",
		Name:         "Asha Verma",
		PhoneNumber:  "9876543210",
		EventType:    EventEntry,
		GateNumber:   2,
		Timestamp:    time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, absent := range []string{"purpose", "return_by", "vehicle_number", "violation"} {
		if strings.Contains(string(data), absent) {
			t.Errorf("expected %q omitted from entry JSON, got: %s", absent, data)
		}
	}
}
