// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id := GenerateCorrelationID()
	if len(id) != 8 {
		t.Errorf("expected correlation ID of 8 chars, got %d: %s", len(id), id)
	}

	other := GenerateCorrelationID()
	if id == other {
		t.Error("expected unique correlation IDs")
	}
}

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	id := GenerateRequestID()
	if len(id) != 36 {
		t.Errorf("expected UUID request ID of 36 chars, got %d: %s", len(id), id)
	}

	other := GenerateRequestID()
	if id == other {
		t.Error("expected unique request IDs")
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if got := CorrelationIDFromContext(ctx); got != "" {
		t.Errorf("expected empty correlation ID from bare context, got %q", got)
	}

	ctx = ContextWithCorrelationID(ctx, "abc12345")
	if got := CorrelationIDFromContext(ctx); got != "abc12345" {
		t.Errorf("expected 'abc12345', got %q", got)
	}
}

func TestContextWithNewCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := ContextWithNewCorrelationID(context.Background())
	if got := CorrelationIDFromContext(ctx); got == "" {
		t.Error("expected generated correlation ID, got empty string")
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("expected empty request ID from bare context, got %q", got)
	}

	ctx = ContextWithRequestID(ctx, "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("expected 'req-1', got %q", got)
	}
}

func TestContextWithNewRequestID(t *testing.T) {
	t.Parallel()

	ctx := ContextWithNewRequestID(context.Background())
	if got := RequestIDFromContext(ctx); got == "" {
		t.Error("expected generated request ID, got empty string")
	}
}

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	ctx := ContextWithLogger(context.Background(), logger)
	got := LoggerFromContext(ctx)

	got.Info().Msg("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("expected context logger to write to buffer, got: %s", buf.String())
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	ctx := ContextWithLogger(context.Background(), logger)
	ctx = ContextWithCorrelationID(ctx, "corr-123")
	ctx = ContextWithRequestID(ctx, "req-456")

	Ctx(ctx).Info().Msg("with ids")

	output := buf.String()
	if !strings.Contains(output, `"correlation_id":"corr-123"`) {
		t.Errorf("expected correlation_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"request_id":"req-456"`) {
		t.Errorf("expected request_id in output, got: %s", output)
	}
}

func TestCtxWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	ctx := ContextWithLogger(context.Background(), logger)
	ctx = ContextWithRequestID(ctx, "req-789")

	child := CtxWith(ctx).Str("roll_number", "21ABC051").Logger()
	child.Info().Msg("student entry")

	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-789"`) {
		t.Errorf("expected request_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"roll_number":"21ABC051"`) {
		t.Errorf("expected roll_number field in output, got: %s", output)
	}
}

func TestCtxShortcuts(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	ctx := ContextWithLogger(context.Background(), logger)

	CtxDebug(ctx).Msg("d")
	CtxInfo(ctx).Msg("i")
	CtxWarn(ctx).Msg("w")
	CtxError(ctx).Msg("e")
	CtxErr(ctx, errTest).Msg("err")

	output := buf.String()
	for _, want := range []string{`"level":"warn"`, `"level":"error"`, "test error"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:     "info",
		Format:    "json",
		Timestamp: false,
		Output:    &buf,
	})

	logger := WithComponent("presence")
	logger.Info().Msg("store opened")

	if !strings.Contains(buf.String(), `"component":"presence"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
