package ingest

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"editorial_ingest/internal/domain"
)

// ArticleStore persists committed candidates. Insert returns
// domain.ErrSlugTaken when the slug uniqueness constraint is violated.
type ArticleStore interface {
	Insert(ctx context.Context, candidate *domain.ArticleCandidate, categoryID int64) (int64, error)
}

// CategoryStore resolves category names or slugs, case-insensitively.
// A missing category is (nil, nil), not an error.
type CategoryStore interface {
	Find(ctx context.Context, nameOrSlug string) (*domain.Category, error)
}

// AuditStore is the append-only import trail. Entries are never mutated.
type AuditStore interface {
	Record(ctx context.Context, entry *domain.ImportAuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter, page, pageSize int) ([]domain.ImportAuditEntry, int, error)
	Stats(ctx context.Context, windowDays int) (*domain.AuditStats, error)
}

// JobQueue is the caller-side view of the extraction queue: enqueue plus the
// polling surface. Status, progress and results are written only by the worker.
type JobQueue interface {
	Enqueue(ctx context.Context, job *domain.ExtractionJob) error
	Get(ctx context.Context, id string) (*domain.ExtractionJob, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ExtractionJob, error)
}

// Publisher notifies downstream subscribers (onboarding counters, milestone
// toasts) after a successful commit. It is never part of the commit
// transaction.
type Publisher interface {
	PublishImport(ctx context.Context, entry *domain.ImportAuditEntry) error
	Close() error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
