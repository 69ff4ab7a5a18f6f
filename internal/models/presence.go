// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package models

import (
	"time"
)

// PresenceRecord is the derived current-state view of one identity.
// There is at most one record per identifier. Student records persist
// across entries and exits; visitor records are deleted on exit.
type PresenceRecord struct {
	IdentityType  string     `json:"identity_type"`
	Identifier    string     `json:"identifier"`
	Name          string     `json:"name"`
	PhoneNumber   string     `json:"phone_number"`
	IsInside      bool       `json:"is_inside"`
	LastEntryTime *time.Time `json:"last_entry_time,omitempty"`
	LastExitTime  *time.Time `json:"last_exit_time,omitempty"`
	PartySize     int        `json:"number_of_visitors,omitempty"`
	VehicleNumber string     `json:"vehicle_number,omitempty"`
}

// ExitPermission is the time-bound artifact created when a student exits
// and consumed (read then deleted) at their next entry. At most one
// permission is outstanding per student; a new exit overwrites it.
type ExitPermission struct {
	RollNumber string    `json:"roll_number"`
	Purpose    string    `json:"purpose"`
	ReturnBy   time.Time `json:"return_by"`
	GateNumber int       `json:"gate_number"`
	CreatedAt  time.Time `json:"created_at"`
}

// VisitorProfile is the registered identity of a visitor party, created at
// entry and deleted at exit. VisitorID is server-generated.
type VisitorProfile struct {
	VisitorID     string    `json:"visitor_id"`
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phone_number"`
	PartySize     int       `json:"number_of_visitors"`
	VehicleNumber string    `json:"vehicle_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
