// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/campuswatch/campuswatch/internal/logging"
)

type contextKey string

// ClaimsContextKey is the request context key under which validated
// claims are stored.
const ClaimsContextKey contextKey = "claims"

// Middleware enforces Bearer-token authentication on protected routes.
type Middleware struct {
	jwtManager *JWTManager
	secLog     *logging.SecurityLogger
}

// NewMiddleware creates an authentication middleware around a JWT manager.
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	return &Middleware{
		jwtManager: jwtManager,
		secLog:     logging.NewSecurityLogger(),
	}
}

// Authenticate validates the request's token and stores the claims in the
// request context. Tokens are read from the Authorization header, falling
// back to the "token" cookie for browser clients.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.CtxErr(r.Context(), err).Msg("Token validation failed")
			m.secLog.LogTokenRejected(r.RemoteAddr, r.UserAgent(), logging.SanitizeError(err.Error()))
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// extractToken pulls the JWT from the Authorization header or token cookie.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return "", fmt.Errorf("unauthorized: missing token")
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("unauthorized: invalid authorization header")
	}

	return parts[1], nil
}

// ClaimsFromContext retrieves validated claims placed by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}
