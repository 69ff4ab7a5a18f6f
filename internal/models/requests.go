// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package models

// StudentEntryRequest records a student entering campus. Name and phone are
// optional; when omitted, the stored presence record supplies them.
type StudentEntryRequest struct {
	RollNumber  string `json:"roll_number" validate:"required,roll_number"`
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,indian_phone"`
	GateNumber  int    `json:"gate_number" validate:"required,min=1,max=10"`
}

// StudentExitRequest records a student exiting campus with a time-bound
// permission. ReturnBy is RFC3339 and normalized to UTC before validation.
type StudentExitRequest struct {
	RollNumber  string `json:"roll_number" validate:"required,roll_number"`
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,indian_phone"`
	Purpose     string `json:"purpose" validate:"required,oneof=MARKET HOME"`
	ReturnBy    string `json:"return_by" validate:"required"`
	GateNumber  int    `json:"gate_number" validate:"required,min=1,max=10"`
}

// VisitorEntryRequest registers a visitor party entering campus.
type VisitorEntryRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=50"`
	PhoneNumber   string `json:"phone_number" validate:"required,indian_phone"`
	PartySize     int    `json:"number_of_visitors" validate:"required,min=1,max=20"`
	VehicleNumber string `json:"vehicle_number,omitempty" validate:"omitempty,vehicle_number"`
	GateNumber    int    `json:"gate_number" validate:"required,min=1,max=10"`
}

// Entry/exit outcome strings returned in the data envelope.
const (
	StatusEnteredSuccessfully  = "entered_successfully"
	StatusEnteredWithViolation = "entered_with_violation"
	StatusExitRecorded         = "exit_recorded"
	StatusVisitorEntered       = "entered"
	StatusVisitorExited        = "exited"
)

// EntryResult is the data payload for student entry responses.
type EntryResult struct {
	Status    string     `json:"status"`
	Violation *Violation `json:"violation,omitempty"`
}

// ExitResult is the data payload for student exit responses.
type ExitResult struct {
	Status     string         `json:"status"`
	Permission ExitPermission `json:"permission"`
}

// VisitorEntryResult is the data payload for visitor entry responses.
type VisitorEntryResult struct {
	Status    string `json:"status"`
	VisitorID string `json:"visitor_id"`
}

// VisitorExitResult is the data payload for visitor exit responses.
type VisitorExitResult struct {
	Status    string `json:"status"`
	VisitorID string `json:"visitor_id"`
}
