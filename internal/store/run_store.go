// Package store persists pipeline run history to SQLite so past
// selections stay inspectable after the process exits.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gauntlet/internal/logging"

	_ "modernc.org/sqlite"
)

// RunStore persists one record per pipeline run.
type RunStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// RunRecord is a persisted pipeline run.
type RunRecord struct {
	ID                  int64
	RunID               string
	ProblemTitle        string
	CandidatesGenerated int
	StressGenerated     int
	PassedSamples       int
	OracleSize          int
	AdditionalInputs    int
	PassedFilter        int
	FallbackUsed        bool
	SelectedID          string // empty when no candidate survived
	SelectedCode        string
	DurationMs          int64
	CreatedAt           time.Time
}

// NewRunStore opens (or creates) the run history database at dbPath.
func NewRunStore(dbPath string) (*RunStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &RunStore{db: db, dbPath: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Get(logging.CategoryStore).Debugf("run store opened at %s", dbPath)
	return s, nil
}

// initialize creates the database schema.
func (s *RunStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE NOT NULL,
		problem_title TEXT NOT NULL,
		candidates_generated INTEGER NOT NULL,
		stress_generated INTEGER NOT NULL,
		passed_samples INTEGER NOT NULL,
		oracle_size INTEGER NOT NULL,
		additional_inputs INTEGER NOT NULL,
		passed_filter INTEGER NOT NULL,
		fallback_used INTEGER NOT NULL DEFAULT 0,
		selected_id TEXT,
		selected_code TEXT,
		duration_ms INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_title ON runs(problem_title);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one run record.
func (s *RunStore) Record(rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO runs (
			run_id, problem_title, candidates_generated, stress_generated,
			passed_samples, oracle_size, additional_inputs, passed_filter,
			fallback_used, selected_id, selected_code, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.ProblemTitle, rec.CandidatesGenerated, rec.StressGenerated,
		rec.PassedSamples, rec.OracleSize, rec.AdditionalInputs, rec.PassedFilter,
		rec.FallbackUsed, rec.SelectedID, rec.SelectedCode, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	logging.Get(logging.CategoryStore).Debugf("recorded run %s (%s)", rec.RunID, rec.ProblemTitle)
	return nil
}

// GetRecent returns the most recent runs, newest first.
func (s *RunStore) GetRecent(limit int) ([]RunRecord, error) {
	if limit < 1 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, run_id, problem_title, candidates_generated, stress_generated,
		       passed_samples, oracle_size, additional_inputs, passed_filter,
		       fallback_used, selected_id, selected_code, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var selectedID, selectedCode sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.ProblemTitle, &rec.CandidatesGenerated, &rec.StressGenerated,
			&rec.PassedSamples, &rec.OracleSize, &rec.AdditionalInputs, &rec.PassedFilter,
			&rec.FallbackUsed, &selectedID, &selectedCode, &rec.DurationMs, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.SelectedID = selectedID.String
		rec.SelectedCode = selectedCode.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetByRunID returns one run by its public run identifier.
func (s *RunStore) GetByRunID(runID string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, run_id, problem_title, candidates_generated, stress_generated,
		       passed_samples, oracle_size, additional_inputs, passed_filter,
		       fallback_used, selected_id, selected_code, duration_ms, created_at
		FROM runs WHERE run_id = ?`, runID)

	var rec RunRecord
	var selectedID, selectedCode sql.NullString
	if err := row.Scan(
		&rec.ID, &rec.RunID, &rec.ProblemTitle, &rec.CandidatesGenerated, &rec.StressGenerated,
		&rec.PassedSamples, &rec.OracleSize, &rec.AdditionalInputs, &rec.PassedFilter,
		&rec.FallbackUsed, &selectedID, &selectedCode, &rec.DurationMs, &rec.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	rec.SelectedID = selectedID.String
	rec.SelectedCode = selectedCode.String
	return &rec, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}
