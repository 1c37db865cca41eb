package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at REAL DEFAULT (unixepoch())
);`

	readKVStatement  = `SELECT value FROM kv WHERE key = ?`
	writeKVStatement = `
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch();`
	eraseKVStatement = `DELETE FROM kv WHERE key = ?`

	sqliteFile = "somnium.sqlite"
)

// SQLiteBackend stores blobs as rows of a single kv table.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens the database file inside basePath. basePath may
// also be ":memory:".
func OpenSQLiteBackend(basePath string) (*SQLiteBackend, error) {
	dsn := basePath
	if basePath != ":memory:" {
		if basePath == "" {
			return nil, errors.New("store: base path unknown")
		}
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure base path: %w", err)
		}
		dsn = filepath.Join(basePath, sqliteFile) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %q: %w", dsn, err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping sqlite %q: %w", dsn, err)
	}
	if _, err := db.Exec(createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create kv table: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Read(key string) ([]byte, error) {
	var val []byte
	err := b.db.QueryRow(readKVStatement, key).Scan(&val)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (b *SQLiteBackend) Write(key string, val []byte) error {
	_, err := b.db.Exec(writeKVStatement, key, val)
	return err
}

func (b *SQLiteBackend) Erase(key string) error {
	_, err := b.db.Exec(eraseKVStatement, key)
	return err
}

// Close releases the database handle.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
