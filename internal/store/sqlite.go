package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/hyperifyio/ticketcapture/internal/capture"
)

// SQLite keeps the capture list as a JSON value in a one-table key-value
// database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, strictPerms bool) (*SQLite, error) {
	perm := os.FileMode(0o755)
	if strictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(filepath.Dir(path), perm); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	if strictPerms {
		_ = os.Chmod(path, 0o600)
	}
	return &SQLite{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS kv(
	  key   TEXT PRIMARY KEY,
	  value TEXT NOT NULL CHECK (json_valid(value))
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context) ([]capture.Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, Key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []capture.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read captures: %w", err)
	}
	records := []capture.Record{}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to decode captures: %w", err)
	}
	return records, nil
}

func (s *SQLite) Set(ctx context.Context, records []capture.Record) error {
	if records == nil {
		records = []capture.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal captures: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv(key, value) VALUES(?, json(?))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		Key, string(data))
	if err != nil {
		return fmt.Errorf("failed to write captures: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
