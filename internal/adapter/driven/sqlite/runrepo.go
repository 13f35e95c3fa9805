package sqlite

import (
	"context"
	"fmt"
	"time"

	"credstamp/internal/domain/model"
	"credstamp/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a RunRepo.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Add inserts a generation-run history row and returns it with ID assigned.
func (r *RunRepo) Add(ctx context.Context, run model.Run) (model.Run, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO runs (template_name, csv_name, mode, page_index, record_count, output_kind, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.Writer.ExecContext(ctx, query,
		run.TemplateName,
		run.CSVName,
		string(run.Mode),
		run.PageIndex,
		run.RecordCount,
		string(run.OutputKind),
		run.Status,
		run.Error,
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.Run{}, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Run{}, fmt.Errorf("run insert id: %w", err)
	}
	run.ID = id
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]model.Run, error) {
	const query = `
		SELECT id, template_name, csv_name, mode, page_index, record_count, output_kind, status, error, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var mode, kind, createdAt string
		if err := rows.Scan(
			&run.ID,
			&run.TemplateName,
			&run.CSVName,
			&mode,
			&run.PageIndex,
			&run.RecordCount,
			&kind,
			&run.Status,
			&run.Error,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Mode = model.Mode(mode)
		run.OutputKind = model.OutputKind(kind)

		run.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for run %d: %w", run.ID, err)
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// parseTime accepts both RFC3339 (written by Add) and SQLite's
// CURRENT_TIMESTAMP format.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
