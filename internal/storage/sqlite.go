package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over the trackio SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens the trackio database at dbPath. Use ":memory:" for an
// in-memory database. The metrics schema is created when absent so the store
// works against a database trackio has not initialized yet.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	// Mirrors the trackio metrics table layout.
	schema := `
	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_name TEXT NOT NULL,
		run_name TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		step INTEGER NOT NULL,
		metrics TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_project_run ON metrics(project_name, run_name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Projects returns the distinct project names, sorted.
func (s *SQLiteStore) Projects(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT project_name FROM metrics ORDER BY project_name")
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// Runs returns the distinct run names for a project, sorted.
func (s *SQLiteStore) Runs(ctx context.Context, project string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT run_name FROM metrics WHERE project_name = ? ORDER BY run_name",
		project)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// Metrics returns the metric records for a run in insertion order.
func (s *SQLiteStore) Metrics(ctx context.Context, project, run string) ([]MetricRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT timestamp, step, metrics FROM metrics WHERE project_name = ? AND run_name = ? ORDER BY id",
		project, run)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var records []MetricRecord
	for rows.Next() {
		var rec MetricRecord
		var payload []byte
		if err := rows.Scan(&rec.Timestamp, &rec.Step, &payload); err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &rec.Values); err != nil {
				return nil, fmt.Errorf("unmarshal metric payload: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
