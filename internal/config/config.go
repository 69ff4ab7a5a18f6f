// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package config loads and validates the application configuration from
// layered sources: built-in defaults, an optional YAML file, then
// environment variables, with later layers overriding earlier ones.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Store    StoreConfig    `koanf:"store"`
	Security SecurityConfig `koanf:"security"`
	Campus   CampusConfig   `koanf:"campus"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Production tightens
	// validation (a real JWT secret becomes mandatory).
	Environment string `koanf:"environment"`
}

// DatabaseConfig configures the DuckDB access log.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`

	// Threads caps DuckDB worker threads. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// RetentionEnabled turns on the age-based log sweep. Off by default:
	// the access log is append-only and kept forever unless a deployment
	// opts in to pruning.
	RetentionEnabled bool `koanf:"retention_enabled"`

	// RetentionMaxAge is how long log entries are kept; the retention
	// sweep runs every RetentionInterval. Ignored unless RetentionEnabled.
	RetentionMaxAge   time.Duration `koanf:"retention_max_age"`
	RetentionInterval time.Duration `koanf:"retention_interval"`
}

// StoreConfig configures the Badger state store (presence, permissions,
// visitor profiles, user accounts).
type StoreConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SecurityConfig configures authentication and API protection.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername/AdminPassword bootstrap the first admin account when
	// the user store is empty.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// Login throttle, per client IP.
	LoginRateLimitAttempts int           `koanf:"login_rate_limit_attempts"`
	LoginRateLimitWindow   time.Duration `koanf:"login_rate_limit_window"`

	// General API rate limit, per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`

	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig configures the authorization enforcer.
type CasbinConfig struct {
	// PolicyPath overrides the embedded policy when set.
	PolicyPath     string        `koanf:"policy_path"`
	AutoReload     bool          `koanf:"auto_reload"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	CacheEnabled   bool          `koanf:"cache_enabled"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
}

// CampusConfig configures gate policy parameters.
type CampusConfig struct {
	// MarketWindow bounds how far ahead a MARKET return deadline may be.
	MarketWindow time.Duration `koanf:"market_window"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:              "/data/campuswatch.duckdb",
			MaxMemory:         "1GB",
			Threads:           0,
			RetentionEnabled:  false,
			RetentionMaxAge:   365 * 24 * time.Hour,
			RetentionInterval: 24 * time.Hour,
		},
		Store: StoreConfig{
			Path:       "/data/state",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:              "",
			SessionTimeout:         24 * time.Hour,
			AdminUsername:          "",
			AdminPassword:          "",
			LoginRateLimitAttempts: 5,
			LoginRateLimitWindow:   time.Minute,
			RateLimitReqs:          100,
			RateLimitWindow:        time.Minute,
			RateLimitDisabled:      false,
			CORSOrigins:            []string{"*"},
			Casbin: CasbinConfig{
				PolicyPath:     "",
				AutoReload:     true,
				ReloadInterval: 30 * time.Second,
				CacheEnabled:   true,
				CacheTTL:       5 * time.Minute,
			},
		},
		Campus: CampusConfig{
			MarketWindow: 12 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for inconsistencies. In production the
// JWT secret is mandatory and must be at least 32 characters.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}

	if c.Server.Environment == "production" {
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters in production")
		}
	}

	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive, got %v", c.Security.SessionTimeout)
	}
	if c.Security.LoginRateLimitAttempts < 1 {
		return fmt.Errorf("security.login_rate_limit_attempts must be at least 1, got %d", c.Security.LoginRateLimitAttempts)
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("security.rate_limit_requests must be at least 1, got %d", c.Security.RateLimitReqs)
	}

	if c.Campus.MarketWindow <= 0 {
		return fmt.Errorf("campus.market_window must be positive, got %v", c.Campus.MarketWindow)
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.RetentionEnabled && c.Database.RetentionMaxAge <= 0 {
		return fmt.Errorf("database.retention_max_age must be positive when retention is enabled, got %v", c.Database.RetentionMaxAge)
	}

	return nil
}
