// Package history keeps an audit log of every backend action the server
// dispatches. Entries land in a local SQLite database so a session can be
// reconstructed after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kicadmcp/pkg/fileops"
)

// defaultRecentLimit applies when Recent is asked for a non-positive count.
const defaultRecentLimit = 20

// Entry is one recorded backend action.
type Entry struct {
	ID        string
	Tool      string
	Endpoint  string
	Request   string
	Status    string
	Message   string
	CreatedAt time.Time
}

// Store is the SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-user history database location.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "kicadmcp", "history.db")
}

// Open opens the history database at dbPath, creating the file and schema
// on first use.
func Open(dbPath string) (*Store, error) {
	if err := fileops.EnsureDirectoryExists(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring history database: %w", err)
	}

	schema := []string{`CREATE TABLE IF NOT EXISTS actions(
						id TEXT PRIMARY KEY,
						tool TEXT NOT NULL,
						endpoint TEXT NOT NULL,
						request TEXT NOT NULL,
						status TEXT NOT NULL,
						message TEXT NOT NULL,
						created_at INTEGER NOT NULL
					);`, `CREATE INDEX IF NOT EXISTS actions_created_at
						ON actions(created_at);`}
	for _, s := range schema {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("preparing history schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Record appends one entry. An empty ID gets a fresh UUID, a zero
// CreatedAt the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions(id, tool, endpoint, request, status, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.Endpoint, e.Request, e.Status, e.Message, e.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("recording action: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first. Non-positive limits
// fall back to a small default.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, endpoint, request, status, message, created_at
		 FROM actions
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Tool, &e.Endpoint, &e.Request, &e.Status, &e.Message, &created); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
