package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/atlas/internal/validate"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `
	id, started_at, duration_ms, ok, strict, min_year, max_year,
	events_total, events_passed, events_revise, events_rejected,
	patterns_total, patterns_passed, patterns_revise, patterns_rejected,
	problems`

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns
// every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// RunResults returns the stored record outcomes of a run, events first, each
// kind in file order.
//
// Returns an empty slice (not nil) if the run has no results.
func (s *Store) RunResults(ctx context.Context, runID string) ([]RecordRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, kind, idx, record_id, digest, score, max_score, verdict, findings
		FROM record_results
		WHERE run_id = ?
		ORDER BY CASE kind WHEN 'event' THEN 0 ELSE 1 END ASC, idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []RecordRow{}
	for rows.Next() {
		var (
			r        RecordRow
			verdict  string
			findings string
		)
		if err := rows.Scan(&r.RunID, &r.Kind, &r.Index, &r.RecordID, &r.Digest,
			&r.Score, &r.MaxScore, &verdict, &findings); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Verdict = validate.Verdict(verdict)
		if r.Findings, err = unmarshalFindings(findings); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// previousRunID returns the run recorded immediately before run, or "" if
// there is none.
func (s *Store) previousRunID(ctx context.Context, run Run) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs
		WHERE started_at < ? OR (started_at = ? AND id < ?)
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, formatTime(run.StartedAt), formatTime(run.StartedAt), run.ID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query previous run: %w", err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r          Run
		startedAt  string
		durationMS int64
		ok, strict int
	)
	err := row.Scan(&r.ID, &startedAt, &durationMS, &ok, &strict, &r.Years.Min, &r.Years.Max,
		&r.Events.Total, &r.Events.Passed, &r.Events.NeedsRevision, &r.Events.Rejected,
		&r.Patterns.Total, &r.Patterns.Passed, &r.Patterns.NeedsRevision, &r.Patterns.Rejected,
		&r.Problems)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Run{}, fmt.Errorf("scan run %s: started_at: %w", r.ID, err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.OK = ok == 1
	r.Strict = strict == 1
	return r, nil
}

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
