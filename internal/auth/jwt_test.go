// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-32-characters-long"

func newTestManager(t *testing.T, timeout time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret, timeout)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestNewJWTManagerRejectsShortSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"empty", "", true},
		{"too short", "short-secret", true},
		{"exactly 32", "12345678901234567890123456789012", false},
		{"long enough", testSecret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewJWTManager(tt.secret, time.Hour)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewJWTManager() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrSecretTooShort) {
				t.Errorf("expected ErrSecretTooShort, got %v", err)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)

	token, expiresAt, err := m.GenerateToken("guard1", "guard")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expected future expiry")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "guard1" {
		t.Errorf("username = %q, want %q", claims.Username, "guard1")
	}
	if claims.Role != "guard" {
		t.Errorf("role = %q, want %q", claims.Role, "guard")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, -time.Minute)

	token, _, err := m.GenerateToken("guard1", "guard")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)
	other, err := NewJWTManager("another-secret-that-is-32-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, _, err := other.GenerateToken("guard1", "guard")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expected error for token signed with different secret")
	}
}

func TestValidateTokenRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Username: "attacker",
		Role:     "admin",
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expected error for alg=none token")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
