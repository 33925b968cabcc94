// Package progress persists per-date solve progress.
//
// The store is the Go rendition of the browser playground's per-date
// local storage: keyed by print date, written after every mutation,
// and deliberately forgiving on read - a malformed or partial record
// is discarded as if absent, never surfaced as an error. Write
// failures are returned but callers treat them as non-fatal; a full
// disk must not end a play session.
package progress

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - pre-migration
// 1 - initial progress table
const currentSchemaVersion = 1

// Store provides durable storage for solve progress records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path, applying
// pragmas and migrations. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open progress database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect progress database: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection
	// to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put writes the record for a print date, replacing any previous one.
func (s *Store) Put(ctx context.Context, printDate string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal progress record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (print_date, payload, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		ON CONFLICT(print_date) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, printDate, string(payload))
	if err != nil {
		return fmt.Errorf("write progress for %s: %w", printDate, err)
	}
	return nil
}

// Get reads the record for a print date. The second return is false
// when no usable record exists; malformed payloads count as absent
// rather than failing the load.
func (s *Store) Get(ctx context.Context, printDate string) (*Record, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM progress WHERE print_date = ?
	`, printDate).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read progress for %s: %w", printDate, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, false, nil // tolerate and discard
	}
	if !rec.Valid() {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Delete removes the record for a print date. Deleting an absent date
// is not an error.
func (s *Store) Delete(ctx context.Context, printDate string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE print_date = ?`, printDate); err != nil {
		return fmt.Errorf("delete progress for %s: %w", printDate, err)
	}
	return nil
}

// Dates returns every print date with a stored record, ascending.
func (s *Store) Dates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT print_date FROM progress ORDER BY print_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list progress dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress dates: %w", err)
	}
	return dates, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps the
// schema version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
