package ingest

import (
	"context"
	"log/slog"
	"time"

	"editorial_ingest/internal/domain"
)

// BatchURLSource yields fresh article URLs for one ingestion cycle.
type BatchURLSource interface {
	FetchBatchURLs(ctx context.Context) ([]string, error)
}

// FeedIngestor runs the full pipeline for feed-discovered URLs: extract as a
// batch, then commit the successful candidates with autocorrection on.
type FeedIngestor struct {
	source       BatchURLSource
	sourceName   string
	orchestrator *Orchestrator
	committer    *Committer
	logger       *slog.Logger
}

func NewFeedIngestor(source BatchURLSource, sourceName string, orchestrator *Orchestrator, committer *Committer, logger *slog.Logger) *FeedIngestor {
	return &FeedIngestor{
		source:       source,
		sourceName:   sourceName,
		orchestrator: orchestrator,
		committer:    committer,
		logger:       logger.With("component", "feed_ingestor"),
	}
}

func (f *FeedIngestor) Ingest(ctx context.Context) (*domain.IngestStats, error) {
	start := time.Now()
	stats := &domain.IngestStats{Source: f.sourceName}

	urls, err := f.source.FetchBatchURLs(ctx)
	if err != nil {
		return nil, err
	}
	stats.Fetched = len(urls)

	if len(urls) == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	batch, err := f.orchestrator.ProcessBatch(ctx, urls)
	if err != nil {
		return nil, err
	}
	stats.Succeeded = len(batch.Succeeded)
	stats.Failed = len(batch.Failed)

	for _, failed := range batch.Failed {
		f.logger.Warn("feed item failed extraction", "url", failed.URL, "reason", failed.Reason)
	}

	if len(batch.Succeeded) > 0 {
		commit, err := f.committer.Commit(ctx, batch.Succeeded, CommitOptions{
			AutoCorrect: true,
			ImportType:  domain.ImportBatch,
		})
		if err != nil {
			return nil, err
		}
		stats.Committed = commit.SuccessCount
		stats.Errors = commit.ErrorCount
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
