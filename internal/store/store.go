// Package store implements SQLite persistence for ARIA: learned action
// preferences and the website permission registry share one database file
// under .aria/.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"aria/internal/logging"

	_ "modernc.org/sqlite"
)

// Store wraps the shared SQLite database.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	logging.Store("Opening database at %s", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS action_preferences (
		intent TEXT NOT NULL,
		action TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (intent, action)
	);
	CREATE INDEX IF NOT EXISTS idx_preferences_intent ON action_preferences(intent);

	CREATE TABLE IF NOT EXISTS website_permissions (
		domain TEXT PRIMARY KEY,
		status TEXT NOT NULL CHECK (status IN ('trusted', 'blocked', 'once')),
		granted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	logging.Store("Closing database at %s", s.path)
	err := s.db.Close()
	s.db = nil
	return err
}
