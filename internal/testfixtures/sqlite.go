package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/hr-delegation/internal/adapter"
	"github.com/example/hr-delegation/internal/persistence/sqlite"
	"github.com/example/hr-delegation/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated SQLite database in a per-test temp directory,
// exposed both raw and through the application adapters.
type SQLiteHarness struct {
	Storage *sqlite.Storage
	Repos   adapter.Repositories
	Applied []string

	cleanup func()
}

// Close releases the database. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a fresh database file.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "hrdesk.db")
	storage, err := sqlite.Open(migration.TempFileTestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	applied, err := storage.Migrate(context.Background(), nil)
	if err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage: storage,
		Repos:   adapter.New(storage),
		Applied: applied,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
