package scheduler

import (
	"context"
	"log/slog"
	"time"

	"editorial_ingest/internal/domain"
)

// Ingestor defines the interface for one ingestion cycle.
type Ingestor interface {
	Ingest(ctx context.Context) (*domain.IngestStats, error)
}

type Scheduler struct {
	ingestor Ingestor
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(ingestor Ingestor, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ingestor: ingestor,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runIngest(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runIngest(ctx)
		}
	}
}

func (s *Scheduler) runIngest(ctx context.Context) {
	ingestCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	stats, err := s.ingestor.Ingest(ingestCtx)
	if err != nil {
		s.logger.Error("ingestion cycle failed", "error", err)
		return
	}

	s.logger.Info("ingestion cycle finished",
		"source", stats.Source,
		"fetched", stats.Fetched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"committed", stats.Committed,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)
}
