// Package store keeps graded analyses and their feedback items in SQLite.
//
// Feedback rows reference their analysis with ON DELETE CASCADE, so deleting
// an analysis clears its feedback in the same statement.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Store owns the analysis database.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the analysis database at dbPath, creating the file and its
// parent directory if needed, and brings the schema up to date.
// dbPath may be ":memory:" for a throwaway store.
func New(dbPath string) (*Store, error) {
	if dbPath != memoryPath {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create analysis store dir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analysis store %s: %w", dbPath, err)
	}

	// foreign_keys is a per-connection pragma and the cascade on
	// feedback_items depends on it, so every query must share the one
	// connection it was set on. A single connection also keeps a
	// ":memory:" database from splitting into several empty ones.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys on %s: %w", dbPath, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate analysis store %s: %w", dbPath, err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection for repositories and schema checks in tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Path() string {
	return s.path
}
