package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"editorial_ingest/internal/domain"
)

// AuditStore is the append-only import trail. Nothing here updates or
// deletes rows; retention is an external concern.
type AuditStore struct {
	db *sqlx.DB
}

func NewAuditStore(db *sqlx.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Record(ctx context.Context, entry *domain.ImportAuditEntry) error {
	query := `
		INSERT INTO import_audit (
			article_title, article_slug, source_url, source_name,
			import_type, format_corrected, status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	exec := GetExecutor(ctx, s.db)

	return exec.QueryRowxContext(ctx, query,
		entry.ArticleTitle,
		entry.ArticleSlug,
		entry.SourceURL,
		entry.SourceName,
		entry.ImportType,
		entry.FormatCorrected,
		entry.Status,
		entry.ErrorMessage,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// List returns a page of entries newest-first plus the total count matching
// the filter. The query is assembled dynamically from the active filters.
func (s *AuditStore) List(ctx context.Context, filter domain.AuditFilter, page, pageSize int) ([]domain.ImportAuditEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	where := buildAuditFilter(filter)

	countSQL, countArgs, err := sq.Select("COUNT(*)").
		From("import_audit").
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	listSQL, listArgs, err := sq.Select(
		"id", "article_title", "article_slug", "source_url", "source_name",
		"import_type", "format_corrected", "status", "error_message", "created_at",
	).
		From("import_audit").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	var entries []domain.ImportAuditEntry
	if err := s.db.SelectContext(ctx, &entries, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}

	return entries, total, nil
}

func buildAuditFilter(filter domain.AuditFilter) sq.And {
	where := sq.And{}

	if filter.ImportType != "" {
		where = append(where, sq.Eq{"import_type": filter.ImportType})
	}
	if !filter.From.IsZero() {
		where = append(where, sq.GtOrEq{"created_at": filter.From})
	}
	if !filter.To.IsZero() {
		where = append(where, sq.LtOrEq{"created_at": filter.To})
	}
	if filter.SourceText != "" {
		pattern := "%" + filter.SourceText + "%"
		where = append(where, sq.Or{
			sq.ILike{"source_name": pattern},
			sq.ILike{"source_url": pattern},
			sq.ILike{"article_title": pattern},
		})
	}

	return where
}

// Stats summarizes commit attempts inside a rolling window grouped by
// import type.
func (s *AuditStore) Stats(ctx context.Context, windowDays int) (*domain.AuditStats, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -windowDays)

	rows, err := s.db.QueryContext(ctx, `
		SELECT import_type, COUNT(*)
		FROM import_audit
		WHERE created_at >= $1
		GROUP BY import_type`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.AuditStats{ByType: make(map[domain.ImportType]int)}
	for rows.Next() {
		var importType string
		var count int
		if err := rows.Scan(&importType, &count); err != nil {
			return nil, err
		}
		stats.ByType[domain.ImportType(importType)] = count
		stats.Total += count
	}

	return stats, rows.Err()
}
