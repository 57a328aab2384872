package compact

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	sqlite_migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
)

// LatestMigrationVersion is the latest migration version of the state
// database.
//
// NOTE: This MUST be updated when a new migration is added.
const LatestMigrationVersion uint = 1

// sqlSchemas holds the SQL migration files.
//
//go:embed migrations/*.sql
var sqlSchemas embed.FS

// ErrMigrationDowngrade is returned when the database was created by a
// newer binary.
var ErrMigrationDowngrade = errors.New("database downgrade detected")

// migrationLogger adapts the package logger to the migrate.Logger
// interface.
type migrationLogger struct{}

// Printf implements the migrate.Logger interface.
func (m *migrationLogger) Printf(format string, v ...any) {
	log.Debugf(strings.TrimRight(format, "\n"), v...)
}

// Verbose implements the migrate.Logger interface.
func (m *migrationLogger) Verbose() bool {
	return false
}

// applyMigrations brings db up to LatestMigrationVersion.
func applyMigrations(db *sql.DB) error {
	driver, err := sqlite_migrate.WithInstance(db, &sqlite_migrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := httpfs.New(http.FS(sqlSchemas), "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	sqlMigrate, err := migrate.NewWithInstance(
		"migrations", source, "sqlite3", driver,
	)
	if err != nil {
		return err
	}
	sqlMigrate.Log = &migrationLogger{}

	version, dirty, err := sqlMigrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to determine current migration "+
			"version: %w", err)
	}

	// A dirty version means an earlier migration died halfway.
	if dirty {
		return fmt.Errorf("database is in a dirty state at version "+
			"%v, manual intervention required", version)
	}

	if version > LatestMigrationVersion {
		return fmt.Errorf("%w: db_version=%v, "+
			"latest_migration_version=%v", ErrMigrationDowngrade,
			version, LatestMigrationVersion)
	}

	err = sqlMigrate.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
