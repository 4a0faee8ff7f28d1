// Package sqlite implements storage.Store on a single SQLite file.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go driver, no cgo

	"github.com/colocash/backend/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is the SQLite-backed implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path, applies pending migrations
// and returns a ready Store.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are off by default in SQLite; busy_timeout makes
	// concurrent writers queue instead of erroring out.
	dsn := "file:" + path + "?" + url.Values{
		"_pragma": []string{"foreign_keys(1)", "busy_timeout(5000)", "journal_mode(WAL)"},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
