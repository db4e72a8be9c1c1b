package database

import (
	"context"
	"time"
)

type HistoryRepository interface {
	GetPublishedIDs(ctx context.Context) ([]string, error)
	GetRecent(ctx context.Context, limit int) ([]PublishedArticle, error)
	GetCount(ctx context.Context) (int, error)

	// Append is effective-once: appending a known article ID is a no-op.
	Append(ctx context.Context, article PublishedArticle) error
}

type SettingsRepository interface {
	Get(ctx context.Context, name string) (string, bool, error)
	GetAll(ctx context.Context) ([]Setting, error)

	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

type RunRepository interface {
	GetRun(ctx context.Context, id string) (*Run, error)
	GetLatestRun(ctx context.Context) (*Run, error)
	GetRuns(ctx context.Context, limit int) ([]Run, error)

	StartRun(ctx context.Context, trigger string) (*Run, error)
	FinishRun(ctx context.Context, id string, status RunStatus, published int, errMsg string) error
}

type EventRepository interface {
	GetRunEvents(ctx context.Context, runID string) ([]Event, error)
	GetRecentEvents(ctx context.Context, limit int) ([]Event, error)

	Append(ctx context.Context, event Event) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
