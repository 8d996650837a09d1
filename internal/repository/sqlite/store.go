// Package sqlite provides a single-file local store for the one-shot CLI:
// the same repository contracts the Postgres store satisfies, backed by an
// embedded SQLite database so a run needs no external services.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

// Store owns the database handle. The repository views returned by the
// accessor methods all share it.
type Store struct {
	db   *sql.DB
	log  *slog.Logger
	path string
}

// Open creates or opens the database at path. ":memory:" is accepted for
// throwaway stores. WAL mode is enabled for file-backed databases so the
// daemon's workers do not serialize on writes.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, log: log, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Documents returns a DocumentRepository backed by this store.
func (s *Store) Documents() repository.DocumentRepository {
	return &documentRepo{store: s}
}

// Runs returns a RunRepository backed by this store.
func (s *Store) Runs() repository.RunRepository {
	return &runRepo{store: s}
}

// Vendors returns a VendorRepository backed by this store.
func (s *Store) Vendors() repository.VendorRepository {
	return &vendorRepo{store: s}
}
