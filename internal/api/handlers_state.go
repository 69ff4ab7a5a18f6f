// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/campuswatch/campuswatch/internal/accesslog"
	"github.com/campuswatch/campuswatch/internal/metrics"
	"github.com/campuswatch/campuswatch/internal/models"
)

// VisitorsInside lists visitor parties currently on campus.
func (h *Handler) VisitorsInside(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	records, err := h.accessSvc.VisitorsInside(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query visitor presence", err)
		return
	}

	h.refreshPresenceGauges(r.Context())
	respondTimed(w, start, map[string]interface{}{
		"count":    len(records),
		"visitors": records,
	})
}

// StudentsOutside lists students currently outside campus on a permission.
func (h *Handler) StudentsOutside(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	records, err := h.accessSvc.StudentsOutside(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query student presence", err)
		return
	}

	h.refreshPresenceGauges(r.Context())
	respondTimed(w, start, map[string]interface{}{
		"count":    len(records),
		"students": records,
	})
}

// Logs returns the most recent entries from the combined access log.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	h.recentLogs(w, r, h.logs.Recent)
}

// LogsStudents returns the most recent entries from the student stream.
func (h *Handler) LogsStudents(w http.ResponseWriter, r *http.Request) {
	h.recentLogs(w, r, h.logs.RecentStudents)
}

// LogsVisitors returns the most recent entries from the visitor stream.
func (h *Handler) LogsVisitors(w http.ResponseWriter, r *http.Request) {
	h.recentLogs(w, r, h.logs.RecentVisitors)
}

func (h *Handler) recentLogs(w http.ResponseWriter, r *http.Request, query func(context.Context, int) ([]models.AccessLogEntry, error)) {
	start := time.Now()
	limit := accesslog.ClampLimit(getIntParam(r, "limit", 100))

	entries, err := query(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query access logs", err)
		return
	}

	respondTimed(w, start, map[string]interface{}{
		"count": len(entries),
		"logs":  entries,
	})
}

// respondTimed sends a success envelope carrying query execution time.
func respondTimed(w http.ResponseWriter, start time.Time, data interface{}) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// refreshPresenceGauges updates the Prometheus presence gauges from current
// store counts. Best effort; failures only cost gauge freshness.
func (h *Handler) refreshPresenceGauges(ctx context.Context) {
	visitors, err := h.accessSvc.VisitorsInside(ctx)
	if err != nil {
		return
	}
	students, err := h.accessSvc.StudentsOutside(ctx)
	if err != nil {
		return
	}
	metrics.UpdatePresenceGauges(len(visitors), len(students))
}
