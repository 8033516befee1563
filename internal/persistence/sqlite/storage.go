package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/example/hr-delegation/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite repositories over one connection pool.
type Storage struct {
	*DelegationRepository
	*MeetingRepository
	*CalendarEventRepository
	*DirectoryRepository

	pool *ConnectionPool
}

// Open connects to the database described by config. Call Migrate before use.
func Open(config migration.SQLiteConfig) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		DelegationRepository:    NewDelegationRepository(pool),
		MeetingRepository:       NewMeetingRepository(pool),
		CalendarEventRepository: NewCalendarEventRepository(pool),
		DirectoryRepository:     NewDirectoryRepository(pool),
		pool:                    pool,
	}, nil
}

// Migrate applies the embedded schema migrations and returns the applied versions.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) ([]string, error) {
	files, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open embedded migrations: %w", err)
	}
	manager := migration.NewManager(migration.NewScanner(), migration.NewSQLiteExecutor(s.pool.DB()), files, logger)
	return manager.Run(ctx)
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
