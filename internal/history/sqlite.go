// Package history persists completed analysis runs in a local SQLite
// database so past reports can be listed and re-exported.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// Summary is a lightweight view of a stored run for listings.
type Summary struct {
	RunID          string    `json:"run_id"`
	Question       string    `json:"question"`
	State          string    `json:"state"`
	ConsensusScore float64   `json:"consensus_score"`
	IterationCount int       `json:"iteration_count"`
	ExpertCount    int       `json:"expert_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store keeps analysis runs in SQLite with WAL journaling.
type Store struct {
	dbPath string
	db     *sql.DB
	mu     sync.RWMutex
}

// NewStore opens (creating if needed) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	s := &Store{dbPath: dbPath}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate runs pending migrations.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// Table doesn't exist yet, run initial migration
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}

	return nil
}

// Save persists a completed run. Saving the same run ID again replaces the
// stored record.
func (s *Store) Save(ctx context.Context, result *core.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result == nil {
		return fmt.Errorf("nil result")
	}
	if result.RunID == "" {
		return fmt.Errorf("result has no run ID")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	createdAt := result.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, question, state, consensus_score, iteration_count,
			expert_count, result, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			question = excluded.question,
			state = excluded.state,
			consensus_score = excluded.consensus_score,
			iteration_count = excluded.iteration_count,
			expert_count = excluded.expert_count,
			result = excluded.result,
			created_at = excluded.created_at
	`,
		result.RunID, result.Question, string(result.State), result.ConsensusScore,
		result.IterationCount, len(result.ExpertAnalyses), string(payload), createdAt,
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	return nil
}

// Get loads a stored run by ID.
func (s *Store) Get(ctx context.Context, runID string) (*core.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT result FROM runs WHERE run_id = ?", runID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}

	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("unmarshaling run %s: %w", runID, err)
	}
	return &result, nil
}

// List returns run summaries newest first, up to limit (<=0 means all).
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT run_id, question, state, consensus_score, iteration_count,
		       expert_count, created_at
		FROM runs
		ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(
			&sm.RunID, &sm.Question, &sm.State, &sm.ConsensusScore,
			&sm.IterationCount, &sm.ExpertCount, &sm.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return out, nil
}

// Delete removes a stored run. Missing runs are not an error.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	return nil
}
