package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/harness"
)

// Run is a recorded run summary.
type Run struct {
	ID        string
	StartedAt time.Time
	File      string
	Spec      string
	Variant   string
	Total     int
	Passed    int
	Counts    compare.Counts
}

// Failed counts failing cases.
func (r Run) Failed() int {
	return r.Total - r.Passed
}

// CaseRecord is one sentence's outcome in a recorded run.
type CaseRecord struct {
	RunID     string
	StartedAt time.Time
	Index     int
	Source    string
	Line      int
	Text      string
	Outcome   compare.Outcome
	Passed    bool
	Error     string
}

// RecordRun stores res and its cases in one transaction and returns the new
// run id.
func (s *Store) RecordRun(ctx context.Context, res *harness.Result) (string, error) {
	id := s.ids.Generate()
	started := s.clock.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback()

	c := res.Counts
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, file, spec, variant, total, passed, tp, fp1, fp2, fn1, fn2)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, started, res.File, res.Spec, res.Variant,
		len(res.Cases), res.Passed(),
		c.TP, c.FP1, c.FP2, c.FN1, c.FN2,
	)
	if err != nil {
		return "", fmt.Errorf("record run: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cases
		(run_id, idx, source, line, text, outcome, passed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("record run: prepare cases: %w", err)
	}
	defer stmt.Close()

	for _, cr := range res.Cases {
		var msg string
		if cr.Err != nil {
			msg = cr.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx,
			id, cr.Index, cr.Test.Source, cr.Test.Line, cr.Test.Text,
			string(cr.Outcome()), cr.Passed(), msg,
		); err != nil {
			return "", fmt.Errorf("record run: insert case %d: %w", cr.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return id, nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, file, spec, variant, total, passed, tp, fp1, fp2, fn1, fn2
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run by id. A missing run wraps sql.ErrNoRows.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, file, spec, variant, total, passed, tp, fp1, fp2, fn1, fn2
		FROM runs
		WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ReadCases returns the cases of a run in fixture order.
func (s *Store) ReadCases(ctx context.Context, runID string) ([]CaseRecord, error) {
	return s.queryCases(ctx, `
		SELECT c.run_id, r.started_at, c.idx, c.source, c.line, c.text, c.outcome, c.passed, c.error
		FROM cases c JOIN runs r ON r.id = c.run_id
		WHERE c.run_id = ?
		ORDER BY c.idx ASC
	`, runID)
}

// CaseHistory returns every recorded outcome of text, newest first.
func (s *Store) CaseHistory(ctx context.Context, text string) ([]CaseRecord, error) {
	return s.queryCases(ctx, `
		SELECT c.run_id, r.started_at, c.idx, c.source, c.line, c.text, c.outcome, c.passed, c.error
		FROM cases c JOIN runs r ON r.id = c.run_id
		WHERE c.text = ?
		ORDER BY r.started_at DESC, c.run_id DESC, c.idx ASC
	`, text)
}

func (s *Store) queryCases(ctx context.Context, query string, args ...any) ([]CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var out []CaseRecord
	for rows.Next() {
		var (
			c       CaseRecord
			started string
			outcome string
		)
		if err := rows.Scan(&c.RunID, &started, &c.Index, &c.Source, &c.Line, &c.Text, &outcome, &c.Passed, &c.Error); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		if c.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		c.Outcome = compare.Outcome(outcome)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r       Run
		started string
	)
	if err := row.Scan(
		&r.ID, &started, &r.File, &r.Spec, &r.Variant, &r.Total, &r.Passed,
		&r.Counts.TP, &r.Counts.FP1, &r.Counts.FP2, &r.Counts.FN1, &r.Counts.FN2,
	); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	r.StartedAt = t
	return r, nil
}
