package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a lookup targets a non-existent row.
var ErrNotFound = errors.New("record not found")

// Store wraps a *sql.DB connection to the crewdeck cache database. The cache
// exists so the sidebar renders instantly and survives offline starts; the
// authoritative data always comes from re-fetching the platform API.
type Store struct {
	conn *sql.DB
}

// Open creates or opens the SQLite cache at dbPath, enables foreign keys,
// and runs all pending migrations.
func Open(dbPath string) (*Store, error) {
	// Ensure parent directory exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// Enable foreign key enforcement for this connection.
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	// Restrict to a single connection; SQLite does not support concurrent writes.
	sqlDB.SetMaxOpenConns(1)

	s := &Store{conn: sqlDB}

	if err := s.runMigrations(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// runMigrations reads all embedded SQL migration files and executes them.
// Migrations use IF NOT EXISTS so they are safe to re-run.
func (s *Store) runMigrations() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}
