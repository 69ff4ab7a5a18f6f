// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := APISecurityHeaders()(okHandler())

	t.Run("plain request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state/logs", nil))

		if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options = %q", got)
		}
		if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
			t.Errorf("X-Frame-Options = %q", got)
		}
		if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
			t.Errorf("unexpected HSTS on plain request: %q", got)
		}
	})

	t.Run("forwarded https gets HSTS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/state/logs", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Strict-Transport-Security"); got == "" {
			t.Error("expected HSTS header behind TLS-terminating proxy")
		}
	})
}

func TestRateLimitCustom(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(DefaultChiMiddlewareConfig())
	handler := m.RateLimitCustom(RateLimitConfig{Requests: 2, Window: time.Minute})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/logs", nil)
	req.RemoteAddr = "10.1.2.3:55000"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json envelope", ct)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	t.Parallel()

	config := DefaultChiMiddlewareConfig()
	config.RateLimitDisabled = true
	m := NewChiMiddleware(config)
	handler := m.RateLimit()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/logs", nil)
	req.RemoteAddr = "10.1.2.3:55000"

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string", "21BCE101", "21BCE101"},
		{"newline escaped", "line1\nline2", "line1\\x0aline2"},
		{"carriage return escaped", "a\rb", "a\\x0db"},
		{"unicode preserved", "café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogValue(tt.input); got != tt.want {
				t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
