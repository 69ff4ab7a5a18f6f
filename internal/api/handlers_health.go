// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package api

import (
	"net/http"
	"time"

	"github.com/campuswatch/campuswatch/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 as long as the process can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 only when both the access-log database and the state store
// are reachable; 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	logConnected := h.logDB != nil && h.logDB.PingContext(r.Context()) == nil
	stateConnected := h.stateDB != nil && !h.stateDB.IsClosed()
	ready := logConnected && stateConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"access_log_connected":  logConnected,
			"state_store_connected": stateConnected,
			"ready_to_serve":        ready,
			"uptime":                time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
