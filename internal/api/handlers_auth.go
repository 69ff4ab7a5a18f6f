// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package api

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/campuswatch/campuswatch/internal/auth"
	"github.com/campuswatch/campuswatch/internal/logging"
	"github.com/campuswatch/campuswatch/internal/metrics"
	"github.com/campuswatch/campuswatch/internal/models"
	"github.com/campuswatch/campuswatch/internal/store"
)

// clientIP strips the port from RemoteAddr for rate limiting and logging.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Login authenticates a guard or admin account and issues a JWT.
//
// The per-IP login limiter runs before any credential work so that
// brute-force attempts never reach bcrypt.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		metrics.RecordRateLimitHit(r.URL.Path)
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many login attempts", nil)
		return
	}

	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Get(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.rejectLogin(w, r, req.Username, "unknown username")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up account", err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.rejectLogin(w, r, req.Username, "wrong password")
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(user.Username, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate authentication token", err)
		return
	}

	h.secLog.LogLoginSuccess(user.Username, user.Role, ip, r.UserAgent())
	metrics.RecordLogin(true)

	h.setAuthCookie(w, r, token, expiresAt)
	respondSuccess(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  user.Username,
		Role:      user.Role,
	})
}

// rejectLogin answers 401 without revealing whether the username exists.
func (h *Handler) rejectLogin(w http.ResponseWriter, r *http.Request, username, reason string) {
	h.secLog.LogLoginFailure(username, clientIP(r), r.UserAgent(), reason)
	metrics.RecordLogin(false)
	respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
}

// setAuthCookie mirrors the bearer token into an HTTP-only cookie so
// browser dashboards authenticate without storing the token in script.
func (h *Handler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// CreateUser provisions a guard or admin account. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", err)
		return
	}

	user := models.AuthUser{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			respondError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", err)
		return
	}

	createdBy := "system"
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		createdBy = claims.Username
	}
	h.secLog.LogUserCreated(user.Username, user.Role, createdBy)
	logging.CtxInfo(r.Context()).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("Account provisioned")

	respondSuccess(w, http.StatusCreated, user.Info())
}

// ListUsers returns every account without credential material. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list accounts", err)
		return
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].Info())
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"count": len(infos),
		"users": infos,
	})
}
