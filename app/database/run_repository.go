package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var runColumns = []string{"id", "trigger_kind", "status", "published", "error", "started_at", "finished_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row, err := r.db.queryRow(ctx, r.db.builder.Select(runColumns...).From("runs").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	return run, nil
}

func (r *runRepository) GetLatestRun(ctx context.Context) (*Run, error) {
	query := r.db.builder.Select(runColumns...).From("runs").OrderBy("started_at DESC").Limit(1)

	row, err := r.db.queryRow(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return run, nil
}

func (r *runRepository) GetRuns(ctx context.Context, limit int) ([]Run, error) {
	query := r.db.builder.Select(runColumns...).From("runs").OrderBy("started_at DESC").Limit(uint64(limit))

	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

func (r *runRepository) StartRun(ctx context.Context, trigger string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	query := r.db.builder.
		Insert("runs").
		Columns("id", "trigger_kind", "status", "published", "error", "started_at").
		Values(run.ID, run.Trigger, string(run.Status), 0, "", run.StartedAt)

	if _, err := r.db.exec(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	return run, nil
}

func (r *runRepository) FinishRun(ctx context.Context, id string, status RunStatus, published int, errMsg string) error {
	query := r.db.builder.
		Update("runs").
		Set("status", string(status)).
		Set("published", published).
		Set("error", errMsg).
		Set("finished_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})

	result, err := r.db.exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", id)
	}

	return nil
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		status     string
		finishedAt sql.NullTime
	)

	if err := row.Scan(&run.ID, &run.Trigger, &status, &run.Published, &run.Error, &run.StartedAt, &finishedAt); err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}

	return &run, nil
}
