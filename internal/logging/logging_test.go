package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestContextWithLoggerRoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected stored logger, got %v", got)
	}

	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil without a logger, got %v", got)
	}
	base := context.Background()
	if ContextWithLogger(base, nil) != base {
		t.Fatal("expected nil logger to leave the context unchanged")
	}
}
