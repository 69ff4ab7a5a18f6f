// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package access orchestrates gate operations. Each operation checks the
// derived presence state, applies the exit-permission policy, updates the
// presence and permission stores, and appends the event to the access log.
//
// The log append is the authoritative record; presence is derived state
// reconstructed from the same events. Operations therefore update presence
// first and append last, so a failed append surfaces as an error to the
// guard rather than a silent gap in the log.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campuswatch/campuswatch/internal/logging"
	"github.com/campuswatch/campuswatch/internal/metrics"
	"github.com/campuswatch/campuswatch/internal/models"
	"github.com/campuswatch/campuswatch/internal/policy"
	"github.com/campuswatch/campuswatch/internal/store"
)

// Fallbacks when neither the request nor the stored record carries
// identity details.
const (
	DefaultName  = "UNKNOWN"
	DefaultPhone = "9999999999"
)

// Sentinel errors mapped to ENTRY_DENIED / EXIT_DENIED / VISITOR_NOT_FOUND
// API responses.
var (
	ErrAlreadyInside   = errors.New("student is already inside campus")
	ErrAlreadyOutside  = errors.New("student is already outside campus")
	ErrVisitorNotFound = errors.New("visitor not found")
	ErrInvalidReturnBy = errors.New("return_by must be a valid RFC3339 timestamp")
)

// EventRecorder appends one access event to the append-only log. Satisfied
// by accesslog.Recorder.
type EventRecorder interface {
	Record(ctx context.Context, entry *models.AccessLogEntry) error
}

// Service orchestrates entry and exit operations at the gates.
type Service struct {
	presence    *store.PresenceStore
	permissions *store.PermissionStore
	visitors    *store.VisitorStore
	recorder    EventRecorder
	exitPolicy  *policy.ExitPolicy

	// now is swappable for tests.
	now func() time.Time
}

// NewService builds the gate service.
func NewService(
	presence *store.PresenceStore,
	permissions *store.PermissionStore,
	visitors *store.VisitorStore,
	recorder EventRecorder,
	exitPolicy *policy.ExitPolicy,
) *Service {
	return &Service{
		presence:    presence,
		permissions: permissions,
		visitors:    visitors,
		recorder:    recorder,
		exitPolicy:  exitPolicy,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// StudentEntry admits a student through a gate. Entry is denied only when
// the student is already inside. An outstanding exit permission is consumed
// exactly once; returning after its deadline records an informational
// LATE_ENTRY violation but never blocks the entry.
func (s *Service) StudentEntry(ctx context.Context, req *models.StudentEntryRequest) (*models.EntryResult, error) {
	now := s.now()

	existing, err := s.presence.Get(ctx, req.RollNumber)
	if err != nil && !errors.Is(err, store.ErrPresenceNotFound) {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}
	if existing != nil && existing.IsInside {
		metrics.RecordDenied(models.IdentityStudent, models.EventEntry, "already_inside")
		return nil, ErrAlreadyInside
	}

	var allowedUntil *time.Time
	perm, err := s.permissions.Consume(ctx, req.RollNumber)
	switch {
	case err == nil:
		allowedUntil = &perm.ReturnBy
	case errors.Is(err, store.ErrPermissionNotFound):
		// Entry without an outstanding permission is allowed as-is.
	default:
		return nil, fmt.Errorf("failed to consume exit permission: %w", err)
	}

	violation := policy.EvaluateEntry(allowedUntil, now)

	name, phone := resolveIdentity(req.Name, req.PhoneNumber, existing)

	rec := models.PresenceRecord{
		IdentityType: models.IdentityStudent,
		Identifier:   req.RollNumber,
		Name:         name,
		PhoneNumber:  phone,
	}
	if err := s.presence.MarkInside(ctx, rec, now); err != nil {
		return nil, fmt.Errorf("failed to mark student inside: %w", err)
	}

	entry := &models.AccessLogEntry{
		ID:           uuid.New().String(),
		IdentityType: models.IdentityStudent,
		Identifier:   req.RollNumber,
		Name:         name,
		PhoneNumber:  phone,
		EventType:    models.EventEntry,
		GateNumber:   req.GateNumber,
		Timestamp:    now,
		Violation:    violation,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record entry event: %w", err)
	}

	status := models.StatusEnteredSuccessfully
	if violation != nil {
		status = models.StatusEnteredWithViolation
		logging.CtxWarn(ctx).
			Str("roll_number", req.RollNumber).
			Time("allowed_until", violation.AllowedUntil).
			Dur("late_by", violation.LateBy()).
			Msg("student entered after permitted return time")
	}

	return &models.EntryResult{Status: status, Violation: violation}, nil
}

// StudentExit records a student leaving campus and grants a time-bound
// exit permission. A new exit overwrites any outstanding permission. The
// exit is denied only when the student is already recorded outside; a
// student with no presence record at all may still exit.
func (s *Service) StudentExit(ctx context.Context, req *models.StudentExitRequest) (*models.ExitResult, error) {
	now := s.now()

	returnBy, err := time.Parse(time.RFC3339, req.ReturnBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReturnBy, err)
	}
	returnBy = returnBy.UTC()

	existing, err := s.presence.Get(ctx, req.RollNumber)
	if err != nil && !errors.Is(err, store.ErrPresenceNotFound) {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}
	if existing != nil && !existing.IsInside {
		metrics.RecordDenied(models.IdentityStudent, models.EventExit, "already_outside")
		return nil, ErrAlreadyOutside
	}

	if err := s.exitPolicy.Validate(req.Purpose, returnBy, now); err != nil {
		metrics.RecordDenied(models.IdentityStudent, models.EventExit, "policy")
		return nil, err
	}

	perm := s.exitPolicy.BuildPermission(req.RollNumber, req.Purpose, returnBy, req.GateNumber, now)
	if err := s.permissions.Put(ctx, perm); err != nil {
		return nil, fmt.Errorf("failed to store exit permission: %w", err)
	}

	name, phone := resolveIdentity(req.Name, req.PhoneNumber, existing)

	rec := models.PresenceRecord{
		IdentityType: models.IdentityStudent,
		Identifier:   req.RollNumber,
		Name:         name,
		PhoneNumber:  phone,
	}
	if err := s.presence.MarkOutside(ctx, rec, now); err != nil {
		return nil, fmt.Errorf("failed to mark student outside: %w", err)
	}

	entry := &models.AccessLogEntry{
		ID:           uuid.New().String(),
		IdentityType: models.IdentityStudent,
		Identifier:   req.RollNumber,
		Name:         name,
		PhoneNumber:  phone,
		EventType:    models.EventExit,
		GateNumber:   req.GateNumber,
		Timestamp:    now,
		Purpose:      req.Purpose,
		ReturnBy:     &perm.ReturnBy,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record exit event: %w", err)
	}

	return &models.ExitResult{Status: models.StatusExitRecorded, Permission: perm}, nil
}

// VisitorEntry registers a visitor party and admits it. The returned
// visitor ID is the handle for the later exit.
func (s *Service) VisitorEntry(ctx context.Context, req *models.VisitorEntryRequest) (*models.VisitorEntryResult, error) {
	now := s.now()
	visitorID := uuid.New().String()

	profile := models.VisitorProfile{
		VisitorID:     visitorID,
		Name:          req.Name,
		PhoneNumber:   req.PhoneNumber,
		PartySize:     req.PartySize,
		VehicleNumber: req.VehicleNumber,
		CreatedAt:     now,
	}
	if err := s.visitors.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create visitor profile: %w", err)
	}

	rec := models.PresenceRecord{
		IdentityType:  models.IdentityVisitor,
		Identifier:    visitorID,
		Name:          req.Name,
		PhoneNumber:   req.PhoneNumber,
		PartySize:     req.PartySize,
		VehicleNumber: req.VehicleNumber,
	}
	if err := s.presence.MarkInside(ctx, rec, now); err != nil {
		return nil, fmt.Errorf("failed to mark visitor inside: %w", err)
	}

	entry := &models.AccessLogEntry{
		ID:            uuid.New().String(),
		IdentityType:  models.IdentityVisitor,
		Identifier:    visitorID,
		Name:          req.Name,
		PhoneNumber:   req.PhoneNumber,
		EventType:     models.EventEntry,
		GateNumber:    req.GateNumber,
		Timestamp:     now,
		PartySize:     req.PartySize,
		VehicleNumber: req.VehicleNumber,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record visitor entry event: %w", err)
	}

	return &models.VisitorEntryResult{
		Status:    models.StatusVisitorEntered,
		VisitorID: visitorID,
	}, nil
}

// VisitorExit records a visitor party leaving. Unknown visitor IDs are
// rejected with ErrVisitorNotFound. Visitor state is fully removed on
// exit; only the access log retains the visit.
func (s *Service) VisitorExit(ctx context.Context, visitorID string, gateNumber int) (*models.VisitorExitResult, error) {
	now := s.now()

	profile, err := s.visitors.Get(ctx, visitorID)
	if err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			metrics.RecordDenied(models.IdentityVisitor, models.EventExit, "unknown_visitor")
			return nil, ErrVisitorNotFound
		}
		return nil, fmt.Errorf("failed to read visitor profile: %w", err)
	}

	// State is torn down before the log append so a failed delete never
	// leaves an EXIT entry for a visitor still recorded inside; the append
	// commits the exit last.
	if err := s.presence.Delete(ctx, visitorID); err != nil && !errors.Is(err, store.ErrPresenceNotFound) {
		return nil, fmt.Errorf("failed to delete visitor presence: %w", err)
	}
	if err := s.visitors.Delete(ctx, visitorID); err != nil && !errors.Is(err, store.ErrVisitorNotFound) {
		return nil, fmt.Errorf("failed to delete visitor profile: %w", err)
	}

	entry := &models.AccessLogEntry{
		ID:            uuid.New().String(),
		IdentityType:  models.IdentityVisitor,
		Identifier:    visitorID,
		Name:          profile.Name,
		PhoneNumber:   profile.PhoneNumber,
		EventType:     models.EventExit,
		GateNumber:    gateNumber,
		Timestamp:     now,
		PartySize:     profile.PartySize,
		VehicleNumber: profile.VehicleNumber,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record visitor exit event: %w", err)
	}

	return &models.VisitorExitResult{
		Status:    models.StatusVisitorExited,
		VisitorID: visitorID,
	}, nil
}

// VisitorsInside returns the visitor parties currently on campus.
func (s *Service) VisitorsInside(ctx context.Context) ([]models.PresenceRecord, error) {
	return s.presence.VisitorsInside(ctx)
}

// StudentsOutside returns the students currently off campus.
func (s *Service) StudentsOutside(ctx context.Context) ([]models.PresenceRecord, error) {
	return s.presence.StudentsOutside(ctx)
}

// resolveIdentity picks the name and phone for the event: request values
// win, then the stored record, then the UNKNOWN fallbacks.
func resolveIdentity(name, phone string, stored *models.PresenceRecord) (string, string) {
	if name == "" {
		if stored != nil && stored.Name != "" {
			name = stored.Name
		} else {
			name = DefaultName
		}
	}
	if phone == "" {
		if stored != nil && stored.PhoneNumber != "" {
			phone = stored.PhoneNumber
		} else {
			phone = DefaultPhone
		}
	}
	return name, phone
}
