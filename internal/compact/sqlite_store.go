package compact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultStateKey is the SQLite record key used when no project is known.
const DefaultStateKey = "default"

// SQLiteStore is a StateStore that keeps one record per key in a SQLite
// database. It lets several projects share one state database without
// sharing a counter.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// OpenSQLiteStore opens (creating if needed) the database at dbPath and
// applies the schema migrations. An empty key selects DefaultStateKey.
func OpenSQLiteStore(dbPath, key string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w",
			err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath,
	)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	if key == "" {
		key = DefaultStateKey
	}

	return &SQLiteStore{db: db, key: key}, nil
}

// LoadState returns the record for the store's key.
//
// NOTE: This is part of the StateStore interface.
func (s *SQLiteStore) LoadState(ctx context.Context) State {
	row := s.db.QueryRowContext(ctx, `
		SELECT edit_count, last_suggestion_ms
		FROM advisor_state
		WHERE key = ?`, s.key,
	)

	var state State
	err := row.Scan(&state.EditCount, &state.LastSuggestionTime)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return DefaultState()

	case err != nil:
		log.WarnS(ctx, "Unable to read advisor state", err,
			"key", s.key)
		return DefaultState()

	case state.EditCount < 0:
		return DefaultState()
	}

	return state
}

// SaveState upserts the record for the store's key.
//
// NOTE: This is part of the StateStore interface.
func (s *SQLiteStore) SaveState(ctx context.Context, state State) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO advisor_state (
			key, edit_count, last_suggestion_ms, updated_at
		) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			edit_count = excluded.edit_count,
			last_suggestion_ms = excluded.last_suggestion_ms,
			updated_at = excluded.updated_at`,
		s.key, state.EditCount, state.LastSuggestionTime,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// A compile-time check to ensure SQLiteStore implements StateStore.
var _ StateStore = (*SQLiteStore)(nil)
