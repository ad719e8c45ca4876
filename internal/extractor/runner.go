package extractor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"editorial_ingest/internal/domain"
)

// JobStore is the worker-side view of the queue. After enqueue the worker is
// the only writer of status, progress, result and error.
type JobStore interface {
	ClaimNext(ctx context.Context) (*domain.ExtractionJob, error)
	SetProgress(ctx context.Context, id string, progress int) error
	Complete(ctx context.Context, id string, result *domain.ArticleCandidate) error
	Fail(ctx context.Context, id string, msg string) error
}

// Runner drives a bounded pool of workers over the queue.
type Runner struct {
	jobs         JobStore
	extractor    Extractor
	workers      int
	idleInterval time.Duration
	logger       *slog.Logger
}

func NewRunner(jobs JobStore, extractor Extractor, workers int, idleInterval time.Duration, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		jobs:         jobs,
		extractor:    extractor,
		workers:      workers,
		idleInterval: idleInterval,
		logger:       logger.With("component", "extraction_worker"),
	}
}

// Run blocks until ctx is cancelled. Each worker claims one job at a time,
// so the pool size bounds extraction parallelism across all batches.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("worker pool started", "workers", r.workers)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.workLoop(ctx, workerID)
		}(i)
	}

	wg.Wait()
	r.logger.Info("worker pool stopped")
	return ctx.Err()
}

func (r *Runner) workLoop(ctx context.Context, workerID int) {
	logger := r.logger.With("worker", workerID)

	for {
		if ctx.Err() != nil {
			return
		}

		job, err := r.jobs.ClaimNext(ctx)
		if err != nil {
			logger.Error("failed to claim job", "error", err)
			r.sleep(ctx)
			continue
		}
		if job == nil {
			r.sleep(ctx)
			continue
		}

		r.process(ctx, logger, job)
	}
}

func (r *Runner) process(ctx context.Context, logger *slog.Logger, job *domain.ExtractionJob) {
	logger.Info("processing job", "job_id", job.ID, "input_type", job.InputType)

	if err := r.jobs.SetProgress(ctx, job.ID, 25); err != nil {
		logger.Warn("failed to update progress", "job_id", job.ID, "error", err)
	}

	candidate, err := r.extractor.Extract(ctx, job)
	if err != nil {
		if failErr := r.jobs.Fail(ctx, job.ID, err.Error()); failErr != nil {
			logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		logger.Warn("job failed", "job_id", job.ID, "error", err)
		return
	}

	if err := r.jobs.SetProgress(ctx, job.ID, 90); err != nil {
		logger.Warn("failed to update progress", "job_id", job.ID, "error", err)
	}

	if err := r.jobs.Complete(ctx, job.ID, candidate); err != nil {
		logger.Error("failed to mark job as done", "job_id", job.ID, "error", err)
		return
	}

	logger.Info("job done", "job_id", job.ID, "slug", candidate.Slug)
}

func (r *Runner) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(r.idleInterval):
	}
}
