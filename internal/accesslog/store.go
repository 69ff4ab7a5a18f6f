// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package accesslog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/campuswatch/campuswatch/internal/logging"
	"github.com/campuswatch/campuswatch/internal/models"
)

// Stream names map to the three log tables.
const (
	streamCombined = "access_logs"
	streamStudents = "student_logs"
	streamVisitors = "visitor_logs"
)

// Read limits for log queries.
const (
	DefaultReadLimit = 100
	MaxReadLimit     = 1000
)

// Store is the DuckDB-backed append-only access log. Every appended event
// lands in the combined table and in the matching per-type table inside one
// transaction. There is no update path.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates an access log store. The caller is responsible for
// calling CreateTables during initialization.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTables creates the three log tables and their indexes if missing.
func (s *Store) CreateTables(ctx context.Context) error {
	var schema strings.Builder
	for _, table := range []string{streamCombined, streamStudents, streamVisitors} {
		fmt.Fprintf(&schema, `
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				identity_type TEXT NOT NULL,
				identifier TEXT NOT NULL,
				name TEXT NOT NULL,
				phone_number TEXT NOT NULL,
				event_type TEXT NOT NULL,
				gate_number INTEGER NOT NULL,
				timestamp TIMESTAMPTZ NOT NULL,
				purpose TEXT,
				return_by TIMESTAMPTZ,
				party_size INTEGER,
				vehicle_number TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s(timestamp DESC);
			CREATE INDEX IF NOT EXISTS idx_%s_identifier ON %s(identifier);
		`, table, table, table, table, table)
	}

	statements := strings.Split(schema.String(), ";")
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	logging.Info().Msg("Access log tables created/verified")
	return nil
}

// Append writes one event to the combined stream and its per-type stream.
// Both inserts share a transaction so an event is never half-recorded.
func (s *Store) Append(ctx context.Context, entry *models.AccessLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}

	perType := streamStudents
	if entry.IdentityType == models.IdentityVisitor {
		perType = streamVisitors
	}

	params := appendParams(entry)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{streamCombined, perType} {
		if _, err := tx.ExecContext(ctx, insertQuery(table), params...); err != nil {
			return fmt.Errorf("append to %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// insertQuery returns the INSERT statement for a log table.
func insertQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (
			id, identity_type, identifier, name, phone_number,
			event_type, gate_number, timestamp,
			purpose, return_by, party_size, vehicle_number
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, table)
}

// appendParams prepares the insert parameters for an entry. The violation
// an entry may carry is deliberately not among them: violations surface in
// API responses and the live feed only, the durable log stays identical to
// the event as gated.
func appendParams(entry *models.AccessLogEntry) []interface{} {
	var purpose *string
	if entry.Purpose != "" {
		purpose = &entry.Purpose
	}

	var partySize *int
	if entry.PartySize > 0 {
		partySize = &entry.PartySize
	}

	var vehicle *string
	if entry.VehicleNumber != "" {
		vehicle = &entry.VehicleNumber
	}

	return []interface{}{
		entry.ID,
		entry.IdentityType,
		entry.Identifier,
		entry.Name,
		entry.PhoneNumber,
		entry.EventType,
		entry.GateNumber,
		entry.Timestamp.UTC(),
		purpose,
		entry.ReturnBy,
		partySize,
		vehicle,
	}
}

// Recent returns the newest entries from the combined stream, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.AccessLogEntry, error) {
	return s.recent(ctx, streamCombined, limit)
}

// RecentStudents returns the newest student entries, newest first.
func (s *Store) RecentStudents(ctx context.Context, limit int) ([]models.AccessLogEntry, error) {
	return s.recent(ctx, streamStudents, limit)
}

// RecentVisitors returns the newest visitor entries, newest first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]models.AccessLogEntry, error) {
	return s.recent(ctx, streamVisitors, limit)
}

// ClampLimit normalizes a requested read limit to [1, MaxReadLimit], with
// DefaultReadLimit for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultReadLimit
	}
	if limit > MaxReadLimit {
		return MaxReadLimit
	}
	return limit
}

func (s *Store) recent(ctx context.Context, table string, limit int) ([]models.AccessLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = ClampLimit(limit)

	query := fmt.Sprintf(`
		SELECT
			id, identity_type, identifier, name, phone_number,
			event_type, gate_number, timestamp,
			purpose, return_by, party_size, vehicle_number
		FROM %s
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, table)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	entries := []models.AccessLogEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", table, err)
	}

	return entries, nil
}

// scannedEntry mirrors a log row with nullable columns.
type scannedEntry struct {
	id           string
	identityType string
	identifier   string
	name         string
	phoneNumber  string
	eventType    string
	gateNumber   int
	timestamp    time.Time
	purpose      sql.NullString
	returnBy     sql.NullTime
	partySize    sql.NullInt32
	vehicle      sql.NullString
}

// scanEntry scans one row into an AccessLogEntry.
func scanEntry(rows *sql.Rows) (*models.AccessLogEntry, error) {
	var s scannedEntry
	if err := rows.Scan(
		&s.id, &s.identityType, &s.identifier, &s.name, &s.phoneNumber,
		&s.eventType, &s.gateNumber, &s.timestamp,
		&s.purpose, &s.returnBy, &s.partySize, &s.vehicle,
	); err != nil {
		return nil, err
	}

	entry := &models.AccessLogEntry{
		ID:           s.id,
		IdentityType: s.identityType,
		Identifier:   s.identifier,
		Name:         s.name,
		PhoneNumber:  s.phoneNumber,
		EventType:    s.eventType,
		GateNumber:   s.gateNumber,
		Timestamp:    s.timestamp.UTC(),
	}

	if s.purpose.Valid {
		entry.Purpose = s.purpose.String
	}
	if s.returnBy.Valid {
		t := s.returnBy.Time.UTC()
		entry.ReturnBy = &t
	}
	if s.partySize.Valid {
		entry.PartySize = int(s.partySize.Int32)
	}
	if s.vehicle.Valid {
		entry.VehicleNumber = s.vehicle.String
	}

	return entry, nil
}

// Count returns the number of entries in the combined stream.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM access_logs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count access logs: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes entries older than cutoff from every stream.
// Only the retention sweeper calls this; the log is otherwise immutable.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, table := range []string{streamCombined, streamStudents, streamVisitors} {
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE timestamp < ?", table), cutoff.UTC())
		if err != nil {
			return total, fmt.Errorf("delete from %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
