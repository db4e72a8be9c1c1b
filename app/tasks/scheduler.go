package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/pitch-post/app/job"
	"github.com/robfig/cron/v3"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	DefaultQueueSize = 16
	pruneSpec        = "@daily"
)

type Options struct {
	Hours          []int // hours of day at which a run starts
	Location       *time.Location
	RunOnStart     bool
	RunTimeout     time.Duration
	EventRetention time.Duration // zero disables pruning
	QueueSize      int
}

type Stats struct {
	QueueSize      int        `json:"queue_size"`
	TotalProcessed int64      `json:"total_processed"`
	TotalErrors    int64      `json:"total_errors"`
	NextRun        *time.Time `json:"next_run,omitempty"`
}

// Scheduler runs pipeline jobs at fixed times of day and on demand. The cron
// only enqueues; a single worker drains the queue, so runs never overlap.
type Scheduler struct {
	runner    Runner
	events    EventPruner
	opts      Options
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
	cron      *cron.Cron
	runEntry  cron.EntryID

	processed atomic.Int64
	errors    atomic.Int64
}

func NewScheduler(runner Runner, events EventPruner, opts Options) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	s := &Scheduler{
		runner:    runner,
		events:    events,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, opts.QueueSize),
		cron:      cron.New(cron.WithLocation(opts.Location), cron.WithLogger(cronLogger{})),
	}

	if spec := CronSpec(opts.Hours); spec != "" {
		id, err := s.cron.AddFunc(spec, func() {
			if err := s.TriggerRun(job.TriggerSchedule); err != nil {
				slog.Warn("Failed to enqueue scheduled run", "error", err)
			}
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to schedule runs %q: %w", spec, err)
		}
		s.runEntry = id
	}

	if events != nil && opts.EventRetention > 0 {
		if _, err := s.cron.AddFunc(pruneSpec, s.enqueuePrune); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to schedule event pruning: %w", err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker(0)

	s.enqueueStartupTasks()
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// TriggerRun queues a pipeline run behind any run already queued.
func (s *Scheduler) TriggerRun(trigger string) error {
	return s.EnqueueTask(NewRunJobTask(trigger, s.runner, s.opts.RunTimeout))
}

func (s *Scheduler) Stats() Stats {
	stats := Stats{
		QueueSize:      len(s.taskQueue),
		TotalProcessed: s.processed.Load(),
		TotalErrors:    s.errors.Load(),
	}

	if s.runEntry != 0 {
		if next := s.cron.Entry(s.runEntry).Next; !next.IsZero() {
			stats.NextRun = &next
		}
	}

	return stats
}

func (s *Scheduler) enqueueStartupTasks() {
	if s.opts.RunOnStart {
		if err := s.TriggerRun(job.TriggerStartup); err != nil {
			slog.Warn("Failed to enqueue startup run", "error", err)
		}
	}

	s.enqueuePrune()
}

func (s *Scheduler) enqueuePrune() {
	if s.events == nil || s.opts.EventRetention <= 0 {
		return
	}

	if err := s.EnqueueTask(NewPruneEventsTask(s.events, s.opts.EventRetention)); err != nil {
		slog.Warn("Failed to enqueue PruneEventsTask", "error", err)
	}
}

// CronSpec builds the standard cron expression firing on the hour at each of
// the given hours of day. It returns "" when hours is empty.
func CronSpec(hours []int) string {
	if len(hours) == 0 {
		return ""
	}

	sorted := slices.Clone(hours)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	fields := make([]string, len(sorted))
	for i, hour := range sorted {
		fields[i] = strconv.Itoa(hour)
	}

	return "0 " + strings.Join(fields, ",") + " * * *"
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("Cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("Cron: "+msg, append(keysAndValues, "error", err)...)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, task.GetTimeout())
	defer cancel()

	err := task.Execute(taskCtx)
	s.processed.Add(1)

	if err != nil {
		s.errors.Add(1)
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "trigger", task.GetTrigger(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
				case <-time.After(retryDelay):
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else if task.GetMaxRetries() > 0 {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
