package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"editorial_ingest/internal/classify"
	"editorial_ingest/internal/domain"
)

// Orchestrator fans a multi-URL submission out into extraction jobs and joins
// on their terminal states. It never touches the article store.
type Orchestrator struct {
	queue        JobQueue
	pollInterval time.Duration
	batchTimeout time.Duration
	logger       *slog.Logger
}

func NewOrchestrator(queue JobQueue, pollInterval, batchTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		queue:        queue,
		pollInterval: pollInterval,
		batchTimeout: batchTimeout,
		logger:       logger.With("component", "orchestrator"),
	}
}

// Enqueue creates one queued job per URL and returns the job ids without
// waiting for the worker. Batch size is validated before any job is created.
func (o *Orchestrator) Enqueue(ctx context.Context, urls []string, imageHint *string) ([]string, error) {
	if len(urls) == 0 || len(urls) > classify.MaxBatchURLs {
		return nil, &domain.BatchSizeError{Count: len(urls), Max: classify.MaxBatchURLs}
	}

	ids := make([]string, 0, len(urls))
	for _, u := range urls {
		job := &domain.ExtractionJob{
			ID:            uuid.NewString(),
			InputType:     domain.JobInputURL,
			SourceContent: u,
			ImageHint:     imageHint,
			Status:        domain.JobQueued,
		}
		if err := o.queue.Enqueue(ctx, job); err != nil {
			return nil, fmt.Errorf("enqueue job for %s: %w", u, err)
		}
		ids = append(ids, job.ID)
	}

	o.logger.Info("batch enqueued", "jobs", len(ids))
	return ids, nil
}

// EnqueueText queues a single free-text normalization job, giving text items
// the same contract as URL items.
func (o *Orchestrator) EnqueueText(ctx context.Context, content string, imageHint *string) (string, error) {
	job := &domain.ExtractionJob{
		ID:            uuid.NewString(),
		InputType:     domain.JobInputText,
		SourceContent: content,
		ImageHint:     imageHint,
		Status:        domain.JobQueued,
	}
	if err := o.queue.Enqueue(ctx, job); err != nil {
		return "", fmt.Errorf("enqueue text job: %w", err)
	}
	return job.ID, nil
}

// ProcessBatch dispatches all URLs and suspends the caller until every job
// reaches a terminal state or the batch deadline expires. It is a completion
// barrier, not a success barrier: per-URL failures land in Failed and a batch
// with zero successes is still a normal result.
func (o *Orchestrator) ProcessBatch(ctx context.Context, urls []string) (*domain.BatchResult, error) {
	ids, err := o.Enqueue(ctx, urls, nil)
	if err != nil {
		return nil, err
	}

	terminal, err := o.waitForJobs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &domain.BatchResult{}
	for i, id := range ids {
		job, ok := terminal[id]
		if !ok {
			// Still queued or processing at the deadline. The job row stays
			// untouched; the operator resubmits instead of cancelling.
			result.Failed = append(result.Failed, domain.FailedURL{
				URL:    urls[i],
				Reason: "extraction did not finish before the batch deadline",
			})
			continue
		}

		if job.Status == domain.JobError {
			reason := "extraction failed"
			if job.Error != nil {
				reason = *job.Error
			}
			result.Failed = append(result.Failed, domain.FailedURL{URL: urls[i], Reason: reason})
			continue
		}

		candidate := *job.Result
		if candidate.SourceURL == nil {
			candidate.SourceURL = &urls[i]
		}
		result.Succeeded = append(result.Succeeded, candidate)
	}

	o.logger.Info("batch resolved",
		"total", len(urls),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)

	return result, nil
}

// waitForJobs polls the queue at the configured interval until every job is
// terminal. Polling stops on its own once nothing is queued or processing;
// each call starts a fresh cycle, so a new submission always restarts it.
func (o *Orchestrator) waitForJobs(ctx context.Context, ids []string) (map[string]*domain.ExtractionJob, error) {
	waitCtx, cancel := context.WithTimeout(ctx, o.batchTimeout)
	defer cancel()

	pending := make(map[string]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}
	terminal := make(map[string]*domain.ExtractionJob, len(ids))

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		for id := range pending {
			job, err := o.queue.Get(waitCtx, id)
			if err != nil {
				o.logger.Warn("job poll failed", "job_id", id, "error", err)
				continue
			}
			if job.Status.Terminal() {
				terminal[id] = job
				delete(pending, id)
			}
		}

		if len(pending) == 0 {
			return terminal, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("batch deadline reached", "unresolved", len(pending))
			return terminal, nil
		case <-ticker.C:
		}
	}
}
