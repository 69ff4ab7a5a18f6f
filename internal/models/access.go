// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package models defines the domain types shared across Campuswatch:
// identities, presence records, exit permissions, access log entries,
// accounts, and the HTTP request/response shapes built from them.
package models

import (
	"time"
)

// Identity types distinguish the two populations moving through campus gates.
const (
	IdentityStudent = "student"
	IdentityVisitor = "visitor"
)

// Event types for access log entries.
const (
	EventEntry = "entry"
	EventExit  = "exit"
)

// Exit purposes accepted by the exit policy.
const (
	PurposeMarket = "MARKET"
	PurposeHome   = "HOME"
)

// ViolationLateEntry is recorded when a student returns after the
// return-by deadline of their exit permission. It is informational and
// never blocks the entry.
const ViolationLateEntry = "LATE_ENTRY"

// Violation describes a policy violation detected at entry time.
// AllowedUntil is the deadline from the consumed exit permission;
// ActualTime is the server-assigned entry timestamp. Both are UTC.
type Violation struct {
	Type         string    `json:"type"`
	AllowedUntil time.Time `json:"allowed_until"`
	ActualTime   time.Time `json:"actual_time"`
}

// LateBy returns how far past the deadline the entry was.
func (v *Violation) LateBy() time.Duration {
	return v.ActualTime.Sub(v.AllowedUntil)
}

// AccessLogEntry is one immutable row in the append-only access log.
// Every gate event is written to the combined stream and to the per-type
// (student or visitor) stream. Timestamps are server-assigned UTC; entries
// are never updated or deleted.
type AccessLogEntry struct {
	ID            string     `json:"id"`
	IdentityType  string     `json:"identity_type"`
	Identifier    string     `json:"identifier"`
	Name          string     `json:"name"`
	PhoneNumber   string     `json:"phone_number"`
	EventType     string     `json:"event_type"`
	GateNumber    int        `json:"gate_number"`
	Timestamp     time.Time  `json:"timestamp"`
	Purpose       string     `json:"purpose,omitempty"`
	ReturnBy      *time.Time `json:"return_by,omitempty"`
	PartySize     int        `json:"number_of_visitors,omitempty"`
	VehicleNumber string     `json:"vehicle_number,omitempty"`
	Violation     *Violation `json:"violation,omitempty"`
}
