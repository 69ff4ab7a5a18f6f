// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuswatch/campuswatch/internal/access"
	"github.com/campuswatch/campuswatch/internal/models"
	"github.com/campuswatch/campuswatch/internal/policy"
)

// StudentEntry records a student entering campus through a gate.
func (h *Handler) StudentEntry(w http.ResponseWriter, r *http.Request) {
	var req models.StudentEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.accessSvc.StudentEntry(r.Context(), &req)
	if err != nil {
		h.respondAccessError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// StudentExit records a student exiting campus with a time-bound permission.
func (h *Handler) StudentExit(w http.ResponseWriter, r *http.Request) {
	var req models.StudentExitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.accessSvc.StudentExit(r.Context(), &req)
	if err != nil {
		h.respondAccessError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// VisitorEntry registers a visitor party entering campus.
func (h *Handler) VisitorEntry(w http.ResponseWriter, r *http.Request) {
	var req models.VisitorEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.accessSvc.VisitorEntry(r.Context(), &req)
	if err != nil {
		h.respondAccessError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// VisitorExit records a visitor party leaving campus. The visitor id comes
// from the URL path; the gate number from the query string.
func (h *Handler) VisitorExit(w http.ResponseWriter, r *http.Request) {
	visitorID := chi.URLParam(r, "visitor_id")
	if visitorID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "visitor_id is required", nil)
		return
	}

	gate := getIntParam(r, "gate_number", 0)
	if gate < 1 || gate > 10 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "gate_number must be between 1 and 10", nil)
		return
	}

	result, err := h.accessSvc.VisitorExit(r.Context(), visitorID, gate)
	if err != nil {
		h.respondAccessError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// respondAccessError maps access service errors onto API error codes.
func (h *Handler) respondAccessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrAlreadyInside):
		respondError(w, http.StatusConflict, "ENTRY_DENIED", "Identity is already inside campus", nil)
	case errors.Is(err, access.ErrAlreadyOutside):
		respondError(w, http.StatusConflict, "EXIT_DENIED", "Student is already outside campus", nil)
	case errors.Is(err, access.ErrVisitorNotFound):
		respondError(w, http.StatusNotFound, "VISITOR_NOT_FOUND", "No visitor with that id is inside campus", nil)
	case errors.Is(err, access.ErrInvalidReturnBy):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "return_by must be a valid RFC3339 timestamp", nil)
	case errors.Is(err, policy.ErrInvalidPurpose),
		errors.Is(err, policy.ErrReturnByPast),
		errors.Is(err, policy.ErrReturnByTooFar):
		respondError(w, http.StatusBadRequest, "EXIT_DENIED", err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process access event", err)
	}
}
