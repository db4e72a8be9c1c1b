package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var eventColumns = []string{"id", "run_id", "level", "article_id", "message", "created_at"}

type eventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetRunEvents(ctx context.Context, runID string) ([]Event, error) {
	query := r.db.builder.Select(eventColumns...).From("events").Where(sq.Eq{"run_id": runID}).OrderBy("id ASC")
	return r.list(ctx, query)
}

func (r *eventRepository) GetRecentEvents(ctx context.Context, limit int) ([]Event, error) {
	query := r.db.builder.Select(eventColumns...).From("events").OrderBy("id DESC").Limit(uint64(limit))
	return r.list(ctx, query)
}

func (r *eventRepository) Append(ctx context.Context, event Event) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := r.db.builder.
		Insert("events").
		Columns("run_id", "level", "article_id", "message", "created_at").
		Values(event.RunID, event.Level, event.ArticleID, event.Message, createdAt.UTC())

	if _, err := r.db.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

func (r *eventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.exec(ctx, r.db.builder.Delete("events").Where(sq.Lt{"created_at": cutoff.UTC()}))
	if err != nil {
		return 0, fmt.Errorf("failed to delete events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted events: %w", err)
	}

	return deleted, nil
}

func (r *eventRepository) list(ctx context.Context, query sq.SelectBuilder) ([]Event, error) {
	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RunID, &e.Level, &e.ArticleID, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}
