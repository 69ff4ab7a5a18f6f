// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuswatch/campuswatch/internal/auth"
)

func requestWithClaims(method, path, username, role string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	ctx := context.WithValue(req.Context(), auth.ClaimsContextKey, &auth.Claims{
		Username: username,
		Role:     role,
	})
	return req.WithContext(ctx)
}

func TestAuthorizeRequest(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(newTestEnforcer(t))

	tests := []struct {
		name       string
		method     string
		path       string
		role       string
		wantStatus int
	}{
		{"guard posts student entry", http.MethodPost, "/api/v1/student/entry", "guard", http.StatusOK},
		{"guard reads state", http.MethodGet, "/api/v1/state/visitors/inside", "guard", http.StatusOK},
		{"guard denied admin users", http.MethodPost, "/api/v1/admin/users", "guard", http.StatusForbidden},
		{"admin posts admin users", http.MethodPost, "/api/v1/admin/users", "admin", http.StatusOK},
		{"admin inherits guard routes", http.MethodPost, "/api/v1/visitor/entry", "admin", http.StatusOK},
		{"unknown role denied", http.MethodGet, "/api/v1/state/logs", "intruder", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := mw.AuthorizeRequest(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			handler(rec, requestWithClaims(tt.method, tt.path, "someone", tt.role))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthorizeRequestWithoutClaims(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(newTestEnforcer(t))
	handler := mw.AuthorizeRequest(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state/logs", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
