package migration

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestManagerRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	files := fstest.MapFS{
		"001_people.sql": {Data: []byte("CREATE TABLE people (id TEXT PRIMARY KEY);")},
		"002_teams.sql":  {Data: []byte("CREATE TABLE teams (id TEXT PRIMARY KEY);\nINSERT INTO teams (id) VALUES ('t1');")},
	}

	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	manager := NewManager(NewScanner(), NewSQLiteExecutor(db), files, logger)

	applied, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.Join(applied, ",") != "001,002" {
		t.Fatalf("applied = %v", applied)
	}
	if !strings.Contains(logs.String(), "migration applied") {
		t.Fatalf("expected applied log entry, got %q", logs.String())
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM teams").Scan(&count); err != nil || count != 1 {
		t.Fatalf("teams count = %d, err = %v", count, err)
	}

	again, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no pending migrations, applied %v", again)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "002" || len(status.Pending) != 0 {
		t.Fatalf("unexpected status: %#v", status)
	}

	files["001_people.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT);")}
	if _, err := manager.Status(ctx); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestManagerRunStopsOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	files := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE ok (id TEXT);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE broken (id TEXT);\nINSERT INTO missing_table VALUES (1);")},
	}
	manager := NewManager(NewScanner(), NewSQLiteExecutor(db), files, slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))

	applied, err := manager.Run(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}
	if strings.Join(applied, ",") != "001" {
		t.Fatalf("applied = %v", applied)
	}

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'broken'").Scan(&name)
	if err == nil {
		t.Fatal("failed migration should have been rolled back")
	}
}
