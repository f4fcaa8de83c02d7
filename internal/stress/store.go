package stress

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Schema DDL for the results database.
const createRuns = `CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    scenario TEXT NOT NULL,
    workers INTEGER NOT NULL,
    ops INTEGER NOT NULL,
    errors INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    started_at TEXT NOT NULL
);`

// Store persists scenario results in a SQLite database so runs on different
// machines and settings can be compared after the fact.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the results database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if _, err := db.Exec(createRuns); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one scenario result.
func (s *Store) Save(r Result) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, scenario, workers, ops, errors, duration_ns, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Scenario, r.Workers, r.Ops, r.Errors,
		r.Duration.Nanoseconds(), r.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	return nil
}

// List returns the most recent results, newest first, capped at limit.
func (s *Store) List(limit int) ([]Result, error) {
	rows, err := s.db.Query(
		`SELECT run_id, scenario, workers, ops, errors, duration_ns, started_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var durationNS int64
		var startedAt string
		if err := rows.Scan(&r.RunID, &r.Scenario, &r.Workers, &r.Ops,
			&r.Errors, &durationNS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationNS)
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = t
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
