// Package sqlite persists the ledger snapshot in a local SQLite database.
//
// Layout follows the ledger's whole-snapshot contract: a single key/value
// row holds the JSON-encoded record sequence and is overwritten on every
// mutation. The schema is managed with embedded golang-migrate migrations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ycaws1/expensy/expense"
	"github.com/ycaws1/expensy/store"

	_ "modernc.org/sqlite"
)

// snapshotKey is the single mapping key holding the serialized ledger.
const snapshotKey = "expenses"

type Store struct {
	db *sql.DB
}

// Ensure interface conformance
var _ store.Local = (*Store)(nil)

// Open opens (creating if needed) the snapshot database at dbPath and runs
// pending migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadAll implements store.Local. A missing snapshot row is the valid
// first-run empty state.
func (s *Store) LoadAll(ctx context.Context) ([]expense.Expense, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, snapshotKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &store.PersistenceError{Op: "load", Err: err}
	}

	var records []expense.Expense
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, &store.PersistenceError{Op: "decode", Err: err}
	}

	slog.DebugContext(ctx, "Snapshot loaded from SQLite",
		"records", len(records))
	return records, nil
}

// SaveAll implements store.Local, overwriting the full persisted snapshot.
func (s *Store) SaveAll(ctx context.Context, records []expense.Expense) error {
	if records == nil {
		records = []expense.Expense{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return &store.PersistenceError{Op: "encode", Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		snapshotKey, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &store.PersistenceError{Op: "save", Err: err}
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite",
		"records", len(records),
		"bytes", len(payload))
	return nil
}
