package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"editorial_ingest/internal/domain"
	"editorial_ingest/internal/leadfmt"
)

// CommitOptions controls a commit run.
type CommitOptions struct {
	AutoCorrect bool
	ImportType  domain.ImportType
}

// Committer resolves categories, enforces the lead convention, persists
// candidates and writes exactly one audit entry per attempt.
type Committer struct {
	articles   ArticleStore
	categories CategoryStore
	audit      AuditStore
	txManager  TransactionManager
	publisher  Publisher
	sources    SourceLookup
	logger     *slog.Logger
}

func NewCommitter(
	articles ArticleStore,
	categories CategoryStore,
	audit AuditStore,
	txManager TransactionManager,
	publisher Publisher,
	sources SourceLookup,
	logger *slog.Logger,
) *Committer {
	return &Committer{
		articles:   articles,
		categories: categories,
		audit:      audit,
		txManager:  txManager,
		publisher:  publisher,
		sources:    sources,
		logger:     logger.With("component", "committer"),
	}
}

// Commit processes candidates independently: no single candidate's failure
// aborts the batch. SuccessCount + ErrorCount always equals len(candidates).
func (c *Committer) Commit(ctx context.Context, candidates []domain.ArticleCandidate, opts CommitOptions) (*domain.CommitResult, error) {
	result := &domain.CommitResult{Items: make([]domain.ItemResult, 0, len(candidates))}

	for i := range candidates {
		item := c.commitOne(ctx, &candidates[i], opts)
		if item.Success {
			result.SuccessCount++
		} else {
			result.ErrorCount++
		}
		result.Items = append(result.Items, item)
	}

	c.logger.Info("commit finished",
		"import_type", opts.ImportType,
		"candidates", len(candidates),
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount,
	)

	return result, nil
}

func (c *Committer) commitOne(ctx context.Context, candidate *domain.ArticleCandidate, opts CommitOptions) domain.ItemResult {
	if candidate.Slug == "" {
		candidate.Slug = domain.Slugify(candidate.Title)
	}

	item := domain.ItemResult{Slug: candidate.Slug, LeadValid: leadfmt.ValidateLead(candidate.Body)}

	if !item.LeadValid && opts.AutoCorrect {
		candidate.Body = leadfmt.AutoFixLead(candidate.Body)
		item.FormatCorrected = true
	}

	entry := &domain.ImportAuditEntry{
		ArticleTitle:    candidate.Title,
		ArticleSlug:     candidate.Slug,
		SourceURL:       candidate.SourceURL,
		SourceName:      c.sources.NameFor(candidate.SourceURL),
		ImportType:      opts.ImportType,
		FormatCorrected: item.FormatCorrected,
	}

	if err := c.persist(ctx, candidate, entry); err != nil {
		msg := err.Error()
		item.Error = &msg

		entry.Status = domain.AuditError
		entry.ErrorMessage = &msg
		if auditErr := c.audit.Record(ctx, entry); auditErr != nil {
			c.logger.Error("failed to record audit entry", "slug", candidate.Slug, "error", auditErr)
		}

		c.logger.Warn("candidate rejected", "slug", candidate.Slug, "error", msg)
		return item
	}

	item.Success = true

	if c.publisher != nil {
		if err := c.publisher.PublishImport(ctx, entry); err != nil {
			c.logger.Error("failed to publish import event", "slug", candidate.Slug, "error", err)
		}
	}

	return item
}

// persist resolves the category and writes the article row together with its
// success audit entry in one transaction, so a failed insert leaves no trace
// beyond the error audit written by the caller.
func (c *Committer) persist(ctx context.Context, candidate *domain.ArticleCandidate, entry *domain.ImportAuditEntry) error {
	categoryID, err := c.resolveCategory(ctx, candidate.CategoryName)
	if err != nil {
		return err
	}

	return c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := c.articles.Insert(txCtx, candidate, categoryID); err != nil {
			return fmt.Errorf("insert article: %w", err)
		}

		entry.Status = domain.AuditSuccess
		if err := c.audit.Record(txCtx, entry); err != nil {
			return fmt.Errorf("record audit entry: %w", err)
		}
		return nil
	})
}

func (c *Committer) resolveCategory(ctx context.Context, name string) (int64, error) {
	if name != "" {
		category, err := c.categories.Find(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("find category: %w", err)
		}
		if category != nil {
			return category.ID, nil
		}
	}

	fallback, err := c.categories.Find(ctx, domain.DefaultCategoryName)
	if err != nil {
		return 0, fmt.Errorf("find default category: %w", err)
	}
	if fallback == nil {
		return 0, domain.ErrCategoryUnresolved
	}
	return fallback.ID, nil
}
