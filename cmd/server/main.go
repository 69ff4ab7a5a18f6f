// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Command server runs the Campuswatch gate server: it opens the state
// store and access log, wires the access service and HTTP API, and runs
// everything under a supervision tree until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuswatch/campuswatch/internal/access"
	"github.com/campuswatch/campuswatch/internal/accesslog"
	"github.com/campuswatch/campuswatch/internal/api"
	"github.com/campuswatch/campuswatch/internal/auth"
	"github.com/campuswatch/campuswatch/internal/authz"
	"github.com/campuswatch/campuswatch/internal/config"
	"github.com/campuswatch/campuswatch/internal/logging"
	"github.com/campuswatch/campuswatch/internal/models"
	"github.com/campuswatch/campuswatch/internal/policy"
	"github.com/campuswatch/campuswatch/internal/store"
	"github.com/campuswatch/campuswatch/internal/supervisor"
	"github.com/campuswatch/campuswatch/internal/supervisor/services"
	"github.com/campuswatch/campuswatch/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting Campuswatch server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// State store: presence, permissions, visitors, accounts.
	stateDB, err := store.Open(store.Config{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open state store")
	}
	defer func() {
		if err := stateDB.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close state store")
		}
	}()

	presence := store.NewPresenceStore(stateDB)
	permissions := store.NewPermissionStore(stateDB)
	visitors := store.NewVisitorStore(stateDB)
	users := store.NewUserStore(stateDB)

	// Access log: append-only event history in DuckDB.
	logDB, err := accesslog.OpenDB(accesslog.Config{
		Path:      cfg.Database.Path,
		Threads:   cfg.Database.Threads,
		MaxMemory: cfg.Database.MaxMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open access log database")
	}
	defer func() {
		if err := logDB.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close access log database")
		}
	}()

	logStore := accesslog.NewStore(logDB)
	if err := logStore.CreateTables(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create access log tables")
	}

	if err := bootstrapAdmin(ctx, users, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	loginLimiter := auth.NewLoginLimiter(
		cfg.Security.LoginRateLimitAttempts,
		cfg.Security.LoginRateLimitWindow,
	)
	loginLimiter.StartCleanup(10 * time.Minute)

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
		PolicyPath:     cfg.Security.Casbin.PolicyPath,
		AutoReload:     cfg.Security.Casbin.AutoReload,
		ReloadInterval: cfg.Security.Casbin.ReloadInterval,
		CacheEnabled:   cfg.Security.Casbin.CacheEnabled,
		CacheTTL:       cfg.Security.Casbin.CacheTTL,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	wsHub := websocket.NewHub()
	recorder := accesslog.NewRecorder(logStore, wsHub)
	exitPolicy := policy.NewExitPolicy(cfg.Campus.MarketWindow)
	accessSvc := access.NewService(presence, permissions, visitors, recorder, exitPolicy)

	handler := api.NewHandler(api.HandlerDeps{
		Config:       cfg,
		AccessSvc:    accessSvc,
		Logs:         logStore,
		Users:        users,
		JWTManager:   jwtManager,
		LoginLimiter: loginLimiter,
		WSHub:        wsHub,
		LogDB:        logDB,
		StateDB:      stateDB,
	})

	chiMW := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, chiMW, auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(store.NewGCService(stateDB, cfg.Store.GCInterval))
	if cfg.Database.RetentionEnabled {
		tree.AddDataService(accesslog.NewRetentionService(
			logStore,
			cfg.Database.RetentionMaxAge,
			cfg.Database.RetentionInterval,
		))
		logging.Info().
			Dur("max_age", cfg.Database.RetentionMaxAge).
			Dur("interval", cfg.Database.RetentionInterval).
			Msg("Access log retention sweep enabled")
	}
	tree.AddMessagingService(wsHub)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	// Setup signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Server listening")

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree failed")
		}
		cancel()
	}

	// Wait for the tree to finish winding down.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil {
		for _, svc := range unstopped {
			logging.Error().
				Str("service", fmt.Sprintf("%v", svc.Service)).
				Msg("Service did not stop cleanly")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// bootstrapAdmin provisions the initial admin account from configuration
// when the user store is empty. Subsequent accounts are created through
// the admin API.
func bootstrapAdmin(ctx context.Context, users *store.UserStore, cfg *config.Config) error {
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting accounts: %w", err)
	}
	if count > 0 {
		return nil
	}
	if cfg.Security.AdminUsername == "" || cfg.Security.AdminPassword == "" {
		logging.Info().Msg("No accounts exist and no admin credentials configured; skipping bootstrap")
		return nil
	}

	hash, err := auth.HashPassword(cfg.Security.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	if err := users.Create(ctx, models.AuthUser{
		Username:     cfg.Security.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	logging.Info().Str("username", cfg.Security.AdminUsername).Msg("Bootstrapped initial admin account")
	return nil
}
