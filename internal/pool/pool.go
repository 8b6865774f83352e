package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/civitgrab/civitgrab/internal/domain"
	apperrors "github.com/civitgrab/civitgrab/internal/errors"
	"github.com/civitgrab/civitgrab/internal/metrics"
	"github.com/civitgrab/civitgrab/internal/retry"
)

// Downloader performs a single authenticated fetch of a task.
type Downloader interface {
	Fetch(ctx context.Context, task domain.Task, token string) error
}

// Exister answers whether a destination already holds a usable file.
type Exister interface {
	Exists(rel string) bool
}

// Pool runs download tasks on a bounded set of workers. Each task gets
// exactly one outcome: skipped when the destination already exists,
// otherwise the result of a retry-wrapped fetch. A failure in one task
// never affects another; worker panics are converted into failed
// outcomes at the worker boundary.
type Pool struct {
	workers int
	retrier *retry.Retrier
	fetcher Downloader
	store   Exister
	logger  *slog.Logger

	total     atomic.Int64
	skipped   atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	done      atomic.Bool
}

// New creates a pool with the given worker count.
func New(workers int, retrier *retry.Retrier, fetcher Downloader, store Exister, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		retrier: retrier,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// Run processes all tasks and blocks until every task has an outcome.
// The summary holds outcomes in input order regardless of completion
// order. Cancelling ctx fails the remaining tasks instead of dropping
// them, so the summary stays complete.
func (p *Pool) Run(ctx context.Context, tasks []domain.Task, token string) domain.Summary {
	outcomes := make([]domain.Outcome, len(tasks))
	p.total.Store(int64(len(tasks)))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = p.process(ctx, tasks[idx], token)
				p.record(workerID, outcomes[idx])
			}
		}(i + 1)
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	p.done.Store(true)
	return domain.Summary{Outcomes: outcomes}
}

func (p *Pool) process(ctx context.Context, task domain.Task, token string) (outcome domain.Outcome) {
	attempts := 0

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker panic recovered", "name", task.Name, "panic", r)
			outcome = domain.Outcome{
				Task:     task,
				Status:   domain.StatusFailed,
				Attempts: attempts,
				Err:      apperrors.Internal(fmt.Errorf("panic: %v", r)).Error(),
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.Outcome{Task: task, Status: domain.StatusFailed, Err: err.Error()}
	}

	if p.store.Exists(task.DestPath) {
		p.logger.Info("already exists, skipping", "name", task.Name, "dest", task.DestPath)
		return domain.Outcome{Task: task, Status: domain.StatusSkipped}
	}

	n, err := p.retrier.Do(ctx, func() error {
		attempts++
		metrics.FetchAttempts.Inc()
		return p.fetcher.Fetch(ctx, task, token)
	})
	if err != nil {
		return domain.Outcome{Task: task, Status: domain.StatusFailed, Attempts: n, Err: err.Error()}
	}
	return domain.Outcome{Task: task, Status: domain.StatusSucceeded, Attempts: n}
}

func (p *Pool) record(workerID int, o domain.Outcome) {
	metrics.TasksTotal.Inc()

	switch o.Status {
	case domain.StatusSkipped:
		p.skipped.Add(1)
		metrics.TasksSkipped.Inc()
	case domain.StatusSucceeded:
		p.succeeded.Add(1)
		metrics.TasksSucceeded.Inc()
		p.logger.Info("downloaded", "worker_id", workerID, "name", o.Task.Name, "attempts", o.Attempts)
	case domain.StatusFailed:
		p.failed.Add(1)
		metrics.TasksFailed.Inc()
		p.logger.Error("download failed", "worker_id", workerID, "name", o.Task.Name, "attempts", o.Attempts, "error", o.Err)
	}
}

// Status reports a snapshot of the run for the status endpoint. Safe to
// call concurrently with Run.
func (p *Pool) Status() domain.RunStatus {
	total := int(p.total.Load())
	skipped := int(p.skipped.Load())
	succeeded := int(p.succeeded.Load())
	failed := int(p.failed.Load())

	return domain.RunStatus{
		Total:     total,
		Pending:   total - skipped - succeeded - failed,
		Skipped:   skipped,
		Succeeded: succeeded,
		Failed:    failed,
		Done:      p.done.Load(),
	}
}
