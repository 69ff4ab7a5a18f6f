// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package accesslog implements the append-only access log on DuckDB: every
// gate event is written to the combined stream and to the per-type (student
// or visitor) stream. Entries carry server-assigned UTC timestamps and are
// never updated; the only deletion path is the optional retention sweeper.
package accesslog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	// DuckDB driver registration.
	_ "github.com/duckdb/duckdb-go/v2"
)

// Config holds DuckDB connection settings.
type Config struct {
	// Path is the database file. Ignored when Memory is set.
	Path string

	// Memory opens an in-memory database. Used in tests.
	Memory bool

	// Threads caps DuckDB's thread pool. Zero means NumCPU.
	Threads int

	// MaxMemory is DuckDB's memory limit (e.g. "512MB").
	MaxMemory string
}

// OpenDB opens the DuckDB database for the access log.
// Extension auto-install/auto-load is disabled to avoid network access in
// restricted environments; the access log schema needs none.
func OpenDB(cfg Config) (*sql.DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	target := cfg.Path
	if cfg.Memory {
		target = ":memory:"
	} else {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		target, threads, maxMemory)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	// DuckDB is embedded; a single connection avoids writer contention.
	db.SetMaxOpenConns(1)

	return db, nil
}
