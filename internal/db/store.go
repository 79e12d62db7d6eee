package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run is one recorded agent invocation.
type Run struct {
	ID        int64     `json:"id"`
	AgentID   string    `json:"agent_id"`
	Command   string    `json:"command"`
	Status    int       `json:"status"`
	Summary   string    `json:"summary"`
	Artifact  string    `json:"artifact,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Store persists the run ledger.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordRun inserts one completed run and returns its row id.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (agent_id, command, status, summary, artifact, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.AgentID, run.Command, run.Status, run.Summary, nullableString(run.Artifact),
		run.StartedAt.UTC().Format(time.RFC3339), run.EndedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 means
// everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, agent_id, command, status, summary, artifact, started_at, ended_at
		FROM runs
		ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			artifact sql.NullString
			started  string
			ended    string
		)
		if err := rows.Scan(&run.ID, &run.AgentID, &run.Command, &run.Status, &run.Summary, &artifact, &started, &ended); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Artifact = artifact.String
		if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.EndedAt, err = time.Parse(time.RFC3339, ended); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
