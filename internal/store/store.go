// Package store handles SQLite persistence of practice attempts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/seqtrain/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for attempt data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			sequence TEXT NOT NULL,
			sequence_length INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			gap_ticks INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_steps (
			attempt_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			expected TEXT NOT NULL,
			label TEXT NOT NULL,
			gap_ticks INTEGER NOT NULL,
			hit INTEGER NOT NULL,
			simultaneous INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_sequence ON attempts(sequence);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores a finished attempt and its steps.
func (s *Store) InsertAttempt(ctx context.Context, stats model.AttemptStats, steps []model.StepStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (started_at, ended_at, sequence, sequence_length, completed, hits, misses, gap_ticks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Sequence,
		stats.SequenceLength,
		boolInt(stats.Completed),
		stats.Hits,
		stats.Misses,
		stats.GapTicks,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(steps) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO attempt_steps (attempt_id, position, expected, label, gap_ticks, hit, simultaneous)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, st := range steps {
			if _, err = stmt.ExecContext(ctx, id, st.Position, st.Expected, st.Label, st.GapTicks, boolInt(st.Hit), boolInt(st.Simultaneous)); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListAttempts returns attempt aggregates filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Sequence != "" {
		clauses = append(clauses, "a.sequence = ?")
		args = append(args, cfg.Sequence)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "a.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT a.id, a.ended_at, a.sequence_length, a.completed, a.hits, a.misses, a.gap_ticks,
			(SELECT COUNT(*) FROM attempt_steps st WHERE st.attempt_id = a.id) AS steps
		FROM attempts a
		WHERE %s
		ORDER BY a.ended_at ASC, a.id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var endedAt string
		var completed int
		if err := rows.Scan(&agg.AttemptID, &endedAt, &agg.SequenceLength, &completed, &agg.Hits, &agg.Misses, &agg.GapTicks, &agg.Steps); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Completed = completed != 0
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListSequences returns the distinct sequence signatures with their attempt counts.
func (s *Store) ListSequences(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sequence, COUNT(*) FROM attempts GROUP BY sequence`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]int{}
	for rows.Next() {
		var seq string
		var count int
		if err := rows.Scan(&seq, &count); err != nil {
			return nil, err
		}
		result[seq] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListStepAggregates aggregates step stats by expected label across attempts.
func (s *Store) ListStepAggregates(ctx context.Context, attemptIDs []int64) ([]model.StepAggregate, error) {
	if len(attemptIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(attemptIDs))
	args := make([]any, len(attemptIDs))
	for i, id := range attemptIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT expected,
		SUM(CASE WHEN hit = 1 AND simultaneous = 0 THEN 1 ELSE 0 END) AS hits,
		SUM(CASE WHEN hit = 1 AND simultaneous = 0 THEN 0 ELSE 1 END) AS misses,
		SUM(CASE WHEN position > 0 THEN gap_ticks ELSE 0 END) AS gap_sum,
		SUM(CASE WHEN position > 0 THEN 1 ELSE 0 END) AS gap_count
		FROM attempt_steps
		WHERE attempt_id IN (%s)
		GROUP BY expected`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.StepAggregate
	for rows.Next() {
		var agg model.StepAggregate
		if err := rows.Scan(&agg.Expected, &agg.Hits, &agg.Misses, &agg.GapSumTicks, &agg.GapCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
