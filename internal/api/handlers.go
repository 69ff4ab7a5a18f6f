// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package api provides the HTTP surface of Campuswatch: routing, request
// validation, and the handlers that drive gate entry/exit, presence reads,
// and account provisioning.
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	gorillaws "github.com/gorilla/websocket"

	"github.com/campuswatch/campuswatch/internal/access"
	"github.com/campuswatch/campuswatch/internal/accesslog"
	"github.com/campuswatch/campuswatch/internal/auth"
	"github.com/campuswatch/campuswatch/internal/config"
	"github.com/campuswatch/campuswatch/internal/logging"
	"github.com/campuswatch/campuswatch/internal/store"
	"github.com/campuswatch/campuswatch/internal/websocket"
)

// Handler bundles the dependencies behind the HTTP endpoints.
type Handler struct {
	config       *config.Config
	accessSvc    *access.Service
	logs         *accesslog.Store
	users        *store.UserStore
	jwtManager   *auth.JWTManager
	loginLimiter *auth.LoginLimiter
	secLog       *logging.SecurityLogger
	wsHub        *websocket.Hub

	// Connectivity handles for the readiness probe.
	logDB   *sql.DB
	stateDB *badger.DB

	startTime time.Time
}

// HandlerDeps carries the dependencies for NewHandler.
type HandlerDeps struct {
	Config       *config.Config
	AccessSvc    *access.Service
	Logs         *accesslog.Store
	Users        *store.UserStore
	JWTManager   *auth.JWTManager
	LoginLimiter *auth.LoginLimiter
	SecurityLog  *logging.SecurityLogger
	WSHub        *websocket.Hub
	LogDB        *sql.DB
	StateDB      *badger.DB
}

// NewHandler creates an API handler with the given dependencies.
func NewHandler(deps HandlerDeps) *Handler {
	secLog := deps.SecurityLog
	if secLog == nil {
		secLog = logging.NewSecurityLogger()
	}
	return &Handler{
		config:       deps.Config,
		accessSvc:    deps.AccessSvc,
		logs:         deps.Logs,
		users:        deps.Users,
		jwtManager:   deps.JWTManager,
		loginLimiter: deps.LoginLimiter,
		secLog:       secLog,
		wsHub:        deps.WSHub,
		logDB:        deps.LogDB,
		stateDB:      deps.StateDB,
		startTime:    time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout to protect against slow clients.
func (h *Handler) getUpgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// configured CORS origins. Browser WebSockets always include Origin, so an
// empty header is rejected outright.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// Fail open for tests and development when no config is wired.
	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// WebSocket upgrades the connection and registers the client with the hub.
// Connected guard dashboards receive every recorded access event live.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := websocket.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
