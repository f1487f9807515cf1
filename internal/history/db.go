// Package history persists a local record of every deploy run in a
// SQLite database. The database lives next to the tool's other state
// files, so an operator can answer "when did we last ship, and did it
// work" without touching the Render dashboard.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// DB wraps the SQLite connection holding deploy history.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates (or opens) the history database at dbPath and ensures
// the schema exists. Parent directories are created as needed.
func Open(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The deploy tool is single-process, but WAL keeps reads cheap while
	// a record is being written.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func initSchema(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS deployments (
		id TEXT PRIMARY KEY,
		service_id TEXT,
		action TEXT NOT NULL CHECK(action IN ('update', 'create')),
		status TEXT NOT NULL CHECK(status IN ('succeeded', 'failed')),
		service_url TEXT,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_deployments_service_id ON deployments(service_id);
	CREATE INDEX IF NOT EXISTS idx_deployments_created_at ON deployments(created_at);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create deployments table: %w", err)
	}
	return nil
}

// OpenTest creates an in-memory database for testing.
func OpenTest() (*DB, error) {
	return Open(":memory:")
}

// now is swapped in tests for deterministic timestamps.
var now = time.Now
