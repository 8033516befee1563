package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/example/hr-delegation/internal/logging"
	"github.com/example/hr-delegation/internal/schedule"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: fmt.Errorf("lookup: %w", ErrNotFound), want: "not_found"},
		{name: "transition", err: ErrInvalidTransition, want: "invalid_transition"},
		{name: "unauthorized", err: ErrUnauthorized, want: "unauthorized"},
		{name: "duplicate", err: ErrAlreadyExists, want: "already_exists"},
		{name: "schedule", err: &schedule.InvalidScheduleError{Start: 10, End: 5}, want: "invalid_schedule"},
		{name: "validation", err: newValidationError("title", "required"), want: "validation"},
		{name: "other", err: errors.New("boom"), want: "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var captured []string
	handler := &recordingHandler{messages: &captured}
	ctxLogger := slog.New(handler)
	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)

	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	serviceLogger(ctx, base, "DelegationService", "Get").Info("hello")

	if len(captured) != 1 || captured[0] != "hello" {
		t.Fatalf("expected context logger to receive the record, got %v", captured)
	}
}
