// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package metrics provides Prometheus instrumentation for gate throughput,
// derived presence state, the HTTP API, and the live event feed.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Gate Event Metrics
	AccessEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_events_total",
			Help: "Total number of recorded gate events",
		},
		[]string{"identity_type", "event_type", "gate"},
	)

	LateEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "late_entries_total",
			Help: "Total number of entries recorded with a LATE_ENTRY violation",
		},
	)

	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denied_total",
			Help: "Total number of denied entry/exit attempts",
		},
		[]string{"identity_type", "event_type", "reason"},
	)

	// Derived Presence State Metrics
	VisitorsInside = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "visitors_inside",
			Help: "Visitor parties currently inside campus",
		},
	)

	StudentsOutside = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "students_outside",
			Help: "Students currently outside campus",
		},
	)

	// Access Log Metrics
	AccessLogAppendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accesslog_append_duration_seconds",
			Help:    "Duration of access log appends in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AccessLogAppendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accesslog_append_errors_total",
			Help: "Total number of failed access log appends",
		},
	)

	// Authentication Metrics
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"}, // "success", "failed"
	)

	// WebSocket Metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of connected event feed clients",
		},
	)

	WSEventsBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_events_broadcast_total",
			Help: "Total number of events broadcast to the feed",
		},
	)

	WSEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_events_dropped_total",
			Help: "Total number of feed events dropped on slow clients",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection for an endpoint.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordAccessEvent records one gate event, with the late-entry counter
// bumped when the entry carried a violation.
func RecordAccessEvent(identityType, eventType string, gate int, violation bool) {
	AccessEventsTotal.WithLabelValues(identityType, eventType, strconv.Itoa(gate)).Inc()
	if violation {
		LateEntriesTotal.Inc()
	}
}

// RecordDenied records a denied entry or exit attempt.
func RecordDenied(identityType, eventType, reason string) {
	AccessDeniedTotal.WithLabelValues(identityType, eventType, reason).Inc()
}

// RecordLogin records a login attempt outcome.
func RecordLogin(success bool) {
	outcome := "failed"
	if success {
		outcome = "success"
	}
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// UpdatePresenceGauges sets the derived-state gauges.
func UpdatePresenceGauges(visitorsInside, studentsOutside int) {
	VisitorsInside.Set(float64(visitorsInside))
	StudentsOutside.Set(float64(studentsOutside))
}
