package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type PruneEventsTask struct {
	Task
	events    EventPruner
	retention time.Duration
}

func NewPruneEventsTask(events EventPruner, retention time.Duration) *PruneEventsTask {
	return &PruneEventsTask{
		Task:      NewTask(TaskTypePruneEvents, "schedule"),
		events:    events,
		retention: retention,
	}
}

func (t *PruneEventsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cutoff := time.Now().Add(-t.retention)

	deleted, err := t.events.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune events: %w", err)
	}

	slog.Info("Task completed",
		"type", "PruneEvents",
		"deleted", deleted,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration", t.GetDuration())

	return nil
}
