// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newAuthedRequest(t *testing.T, m *JWTManager, username, role string) *http.Request {
	t.Helper()
	token, _, err := m.GenerateToken(username, role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/visitors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	t.Parallel()

	jwtManager := newTestManager(t, time.Hour)
	mw := NewMiddleware(jwtManager)

	var gotClaims *Claims
	handler := mw.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, newAuthedRequest(t, jwtManager, "guard1", "guard"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotClaims == nil {
		t.Fatal("expected claims in context")
	}
	if gotClaims.Username != "guard1" || gotClaims.Role != "guard" {
		t.Errorf("claims = %s/%s, want guard1/guard", gotClaims.Username, gotClaims.Role)
	}
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(newTestManager(t, time.Hour))
	handler := mw.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state/visitors", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(newTestManager(t, time.Hour))
	handler := mw.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/visitors", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(newTestManager(t, time.Hour))
	handler := mw.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/visitors", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.here")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticateAcceptsCookieToken(t *testing.T) {
	t.Parallel()

	jwtManager := newTestManager(t, time.Hour)
	mw := NewMiddleware(jwtManager)

	token, _, err := jwtManager.GenerateToken("admin1", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handler := mw.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/visitors", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
