// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are read from an fs.FS (usually an embedded directory) and
// follow the naming convention {version}_{description}.sql, for example
// "001_delegations.sql". Each file runs inside its own transaction and is
// recorded in the schema_migrations table together with its checksum, so a
// later run skips it and can detect edits to already-applied files.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewScanner(), migration.NewSQLiteExecutor(db), files, logger)
//	if _, err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
