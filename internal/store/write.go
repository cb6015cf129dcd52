package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/atlas/internal/audit"
)

// RecordRun stores rep and every record result in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - recording the same run
// twice is silently ignored.
func (s *Store) RecordRun(ctx context.Context, rep *audit.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, duration_ms, ok, strict, min_year, max_year,
		 events_total, events_passed, events_revise, events_rejected,
		 patterns_total, patterns_passed, patterns_revise, patterns_rejected,
		 problems)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rep.RunID,
		formatTime(rep.StartedAt),
		rep.Duration.Milliseconds(),
		boolInt(rep.OK()),
		boolInt(rep.Strict),
		rep.Years.Min,
		rep.Years.Max,
		rep.Events.Total, rep.Events.Passed, rep.Events.NeedsRevision, rep.Events.Rejected,
		rep.Patterns.Total, rep.Patterns.Passed, rep.Patterns.NeedsRevision, rep.Patterns.Rejected,
		len(rep.Problems),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	for _, sum := range []audit.Summary{rep.Events, rep.Patterns} {
		if err := writeResults(ctx, tx, rep.RunID, sum); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: commit: %w", err)
	}
	return nil
}

func writeResults(ctx context.Context, tx *sql.Tx, runID string, s audit.Summary) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO record_results
		(run_id, kind, idx, record_id, digest, score, max_score, verdict, findings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record %s results: %w", s.Kind, err)
	}
	defer stmt.Close()

	for _, r := range s.Results {
		findings, err := marshalFindings(r.Result.Findings())
		if err != nil {
			return fmt.Errorf("record %s %d: %w", s.Kind, r.Index, err)
		}
		if _, err := stmt.ExecContext(ctx,
			runID, s.Kind, r.Index, r.ID, r.Digest,
			r.Result.Score, r.Result.MaxScore, string(r.Result.Verdict), findings,
		); err != nil {
			return fmt.Errorf("record %s %d: %w", s.Kind, r.Index, err)
		}
	}
	return nil
}
