package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type RunJobTask struct {
	Task
	runner Runner
}

// NewRunJobTask creates a pipeline run task. Runs are never retried: an
// article that failed is picked up again by the next scheduled run.
func NewRunJobTask(trigger string, runner Runner, timeout time.Duration) *RunJobTask {
	task := NewTask(TaskTypeRunJob, trigger)
	task.MaxRetries = 0
	task.Timeout = timeout

	return &RunJobTask{
		Task:   task,
		runner: runner,
	}
}

func (t *RunJobTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.runner.Run(ctx, t.Trigger)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	slog.Info("Task completed",
		"type", "RunJob",
		"trigger", t.Trigger,
		"run_id", result.RunID,
		"published", result.Published,
		"duration", t.GetDuration())

	return nil
}
