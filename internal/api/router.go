// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuswatch/campuswatch/internal/auth"
	"github.com/campuswatch/campuswatch/internal/authz"
	"github.com/campuswatch/campuswatch/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be mounted with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the HTTP routing table.
type Router struct {
	handler *Handler
	chiMW   *ChiMiddleware
	authMW  *auth.Middleware
	authzMW *authz.Middleware
}

// NewRouter creates a router over the given handler and middleware factories.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware, authzMW *authz.Middleware) *Router {
	return &Router{
		handler: handler,
		chiMW:   chiMW,
		authMW:  authMW,
		authzMW: authzMW,
	}
}

// Setup configures all HTTP routes using the Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(router.chiMW.CORS()) // CORS must be global to handle OPTIONS preflight

	// Health probes. Public, permissively rate limited for monitoring tools.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Authentication. Login carries its own per-IP limiter inside the
	// handler; the httprate layer bounds total request volume.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitLogin())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Post("/login", router.handler.Login)
	})

	// Admin provisioning. Requires the admin role via Casbin.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitAdmin())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.Use(chiMiddleware(router.authzMW.AuthorizeRequest))

		r.Post("/users", router.handler.CreateUser)
		r.Get("/users", router.handler.ListUsers)
	})

	// Gate operations. Guards record entries and exits here.
	r.Route("/api/v1/student", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.Use(chiMiddleware(router.authzMW.AuthorizeRequest))

		r.Post("/entry", router.handler.StudentEntry)
		r.Post("/exit", router.handler.StudentExit)
	})

	r.Route("/api/v1/visitor", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.Use(chiMiddleware(router.authzMW.AuthorizeRequest))

		r.Post("/entry", router.handler.VisitorEntry)
		r.Post("/exit/{visitor_id}", router.handler.VisitorExit)
	})

	// Derived state reads.
	r.Route("/api/v1/state", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.Use(chiMiddleware(router.authzMW.AuthorizeRequest))

		r.Get("/visitors/inside", router.handler.VisitorsInside)
		r.Get("/students/outside", router.handler.StudentsOutside)
		r.Get("/logs", router.handler.Logs)
		r.Get("/logs/students", router.handler.LogsStudents)
		r.Get("/logs/visitors", router.handler.LogsVisitors)
	})

	// Live event stream for guard dashboards.
	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.Use(chiMiddleware(router.authzMW.AuthorizeRequest))
		r.Get("/", router.handler.WebSocket)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
