package memory

import (
	"context"
	"testing"
	"time"

	"github.com/example/hr-delegation/internal/persistence"
	"github.com/example/hr-delegation/internal/persistence/persistencetest"
)

func TestStorageContract(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistencetest.Store {
		return New()
	})
}

func TestStorageReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := New()

	record := persistence.DelegationRecord{
		ID:         "rec-1",
		Title:      "Onboarding",
		Highlights: []string{"badge"},
		AssignedTo: "hr",
		Deadline:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Priority:   "low",
		Status:     "pending",
	}
	if err := storage.CreateRecord(ctx, record); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	record.Highlights[0] = "mutated"

	got, err := storage.GetRecord(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.Highlights[0] != "badge" {
		t.Fatalf("stored record aliased caller slice: %v", got.Highlights)
	}

	got.Highlights[0] = "mutated again"
	again, _ := storage.GetRecord(ctx, "rec-1")
	if again.Highlights[0] != "badge" {
		t.Fatalf("returned record aliased stored slice: %v", again.Highlights)
	}
}
