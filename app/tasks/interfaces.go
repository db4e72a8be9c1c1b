package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/pitch-post/app/job"
)

// TaskSchedulerInterface is used by the application and the API to manage
// background runs.
//
//	scheduler := NewScheduler(engine, eventRepo, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.TriggerRun(job.TriggerManual)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerRun(trigger string) error
	Stats() Stats
}

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, trigger string) (*job.Result, error)
}

type EventPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
