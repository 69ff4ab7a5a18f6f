// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package authz

import (
	"net/http"

	"github.com/campuswatch/campuswatch/internal/auth"
	"github.com/campuswatch/campuswatch/internal/logging"
)

// Middleware enforces role-based authorization. It must run after
// auth.Middleware.Authenticate so claims are present in the context.
type Middleware struct {
	enforcer *Enforcer
	secLog   *logging.SecurityLogger
}

// NewMiddleware creates an authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		secLog:   logging.NewSecurityLogger(),
	}
}

// AuthorizeRequest derives the action from the HTTP method and enforces
// the caller's role against the request path.
func (m *Middleware) AuthorizeRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
			return
		}

		action := methodToAction(r.Method)
		object := r.URL.Path

		allowed, err := m.enforcer.EnforceRole(claims.Role, object, action)
		if err != nil {
			logging.CtxErr(r.Context(), err).Msg("Authorization error")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !allowed {
			m.secLog.LogAccessDenied(claims.Username, claims.Role, r.RemoteAddr, r.URL.Path)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
