package migration

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager orchestrates scanning, checksum verification and execution.
type Manager struct {
	scanner  Scanner
	executor Executor
	files    fs.FS
	logger   *slog.Logger
}

// NewManager constructs a Manager. A nil logger falls back to slog.Default().
func NewManager(scanner Scanner, executor Executor, files fs.FS, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  scanner,
		executor: executor,
		files:    files,
		logger:   logger.With("component", "migration"),
	}
}

// Run applies all pending migrations in version order and returns the applied versions.
// It stops at the first failure; earlier migrations stay committed.
func (m *Manager) Run(ctx context.Context) ([]string, error) {
	start := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "migration status",
		"current_version", status.CurrentVersion,
		"applied_count", len(status.Applied),
		"pending_count", len(status.Pending),
	)

	applied := make([]string, 0, len(status.Pending))
	for i, migration := range status.Pending {
		migrationStart := time.Now()
		m.logger.InfoContext(ctx, "applying migration",
			"version", migration.Version,
			"description", migration.Description,
			"position", fmt.Sprintf("%d/%d", i+1, len(status.Pending)),
		)

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "error", err)
			return applied, NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		elapsed := time.Since(migrationStart)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			return applied, NewMigrationError(migration.Version, migration.FilePath, "record migration", err)
		}
		applied = append(applied, migration.Version)
		m.logger.InfoContext(ctx, "migration applied", "version", migration.Version, "duration", elapsed)
	}

	if len(applied) > 0 {
		m.logger.InfoContext(ctx, "migrations completed", "count", len(applied), "duration", time.Since(start))
	}
	return applied, nil
}

// Status reports applied and pending migrations. Applied files whose checksum
// changed since they ran produce ErrChecksumMismatch.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}

	available, err := m.scanner.ScanMigrations(m.files)
	if err != nil {
		return Status{}, err
	}

	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return Status{}, err
	}

	checksums := make(map[string]string, len(applied))
	for _, row := range applied {
		checksums[row.Version] = row.Checksum
	}

	status := Status{Applied: applied, Pending: make([]Migration, 0)}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}

	for _, migration := range available {
		checksum, ok := checksums[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if checksum != "" && checksum != migration.Checksum {
			return Status{}, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}

	return status, nil
}
