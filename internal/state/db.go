package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps an SQLite database connection with claudelet-specific operations.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultDBPath returns the path to the claudelet database under XDG data home.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "claudelet", "claudelet.db")
}

// Open opens an SQLite database at the given path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{
		conn: conn,
		path: path,
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

const migrationV1Contexts = `
CREATE TABLE IF NOT EXISTS contexts (
	id TEXT PRIMARY KEY,
	request TEXT NOT NULL,
	status TEXT NOT NULL,
	tier TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	completed_at DATETIME
)`

const migrationV2Results = `
CREATE TABLE IF NOT EXISTS results (
	context_id TEXT NOT NULL,
	task_id TEXT NOT NULL,
	worker_id TEXT NOT NULL DEFAULT '',
	tier TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	output TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	finished_at DATETIME NOT NULL,
	PRIMARY KEY (context_id, task_id),
	FOREIGN KEY (context_id) REFERENCES contexts(id)
)`

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Contexts},
		{2, migrationV2Results},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := db.conn.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := db.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}

	return nil
}

// CreateContext inserts a new context lifecycle row.
func (db *DB) CreateContext(c *ContextRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		"INSERT INTO contexts (id, request, status, tier, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Request, c.Status, c.Tier, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert context: %w", err)
	}
	return nil
}

// UpdateContextStatus updates a context's status and optional completion time.
func (db *DB) UpdateContextStatus(id, status string, completedAt *time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		"UPDATE contexts SET status = ?, completed_at = ? WHERE id = ?",
		status, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update context %s: %w", id, err)
	}
	return nil
}

// GetContext returns the context row for the given id, or nil if not found.
func (db *DB) GetContext(id string) (*ContextRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRow(
		"SELECT id, request, status, tier, created_at, completed_at FROM contexts WHERE id = ?",
		id,
	)

	c := &ContextRecord{}
	err := row.Scan(&c.ID, &c.Request, &c.Status, &c.Tier, &c.CreatedAt, &c.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan context: %w", err)
	}
	return c, nil
}

// RecordResult inserts a sub-task result row. Results are write-once;
// a second insert for the same (context, task) pair fails.
func (db *DB) RecordResult(r *ResultRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		`INSERT INTO results (context_id, task_id, worker_id, tier, status, output, error, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ContextID, r.TaskID, r.WorkerID, r.Tier, r.Status, r.Output, r.Error, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns all result rows for a context in task-id order.
func (db *DB) ListResults(contextID string) ([]ResultRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(
		`SELECT context_id, task_id, worker_id, tier, status, output, error, finished_at
		 FROM results WHERE context_id = ? ORDER BY task_id`,
		contextID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []ResultRecord
	for rows.Next() {
		var r ResultRecord
		if err := rows.Scan(&r.ContextID, &r.TaskID, &r.WorkerID, &r.Tier, &r.Status, &r.Output, &r.Error, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
