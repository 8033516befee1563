package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/hr-delegation/internal/adapter"
	"github.com/example/hr-delegation/internal/config"
	"github.com/example/hr-delegation/internal/persistence/memory"
	"github.com/example/hr-delegation/internal/persistence/sqlite"
	"github.com/example/hr-delegation/internal/persistence/sqlite/migration"
)

// openSQLite opens the configured database without migrating it.
func openSQLite(cfg config.Config) (*sqlite.Storage, error) {
	if cfg.Storage != config.StorageSQLite {
		return nil, fmt.Errorf("storage %q has no database to open; set HRDESK_STORAGE=sqlite", cfg.Storage)
	}
	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLitePath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.SQLitePath, err)
	}
	return storage, nil
}

// openStore returns a migrated store for read commands and a release func.
func openStore(ctx context.Context, cfg config.Config) (adapter.Store, func() error, error) {
	if cfg.Storage == config.StorageMemory {
		return memory.New(), func() error { return nil }, nil
	}
	storage, err := openSQLite(cfg)
	if err != nil {
		return nil, nil, err
	}
	if _, err := storage.Migrate(ctx, cliLogger(cfg)); err != nil {
		_ = storage.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return storage, storage.Close, nil
}

// cliLogger keeps library logs off stdout so command output stays parseable.
func cliLogger(cfg config.Config) *slog.Logger {
	if cfg.LogLevel > slog.LevelDebug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.Default()
}
