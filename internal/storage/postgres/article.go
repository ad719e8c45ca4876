package postgres

import (
	"errors"

	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"editorial_ingest/internal/domain"
)

// pq error code for unique_violation.
const uniqueViolation = "23505"

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// Insert persists a candidate as an article row. Slug uniqueness is enforced
// by the database, not here: a collision surfaces as domain.ErrSlugTaken so
// concurrent batches racing on the same slug cannot both win.
func (s *ArticleStore) Insert(ctx context.Context, candidate *domain.ArticleCandidate, categoryID int64) (int64, error) {
	query := `
		INSERT INTO articles (
			title, slug, excerpt, body, category_id, source_url,
			hero_image, image_alt, image_credit, tags, seo_title, seo_description
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id`

	exec := GetExecutor(ctx, s.db)

	var id int64
	err := exec.QueryRowxContext(ctx, query,
		candidate.Title,
		candidate.Slug,
		candidate.Excerpt,
		candidate.Body,
		categoryID,
		candidate.SourceURL,
		candidate.HeroImage,
		candidate.ImageAlt,
		candidate.ImageCredit,
		pq.Array(candidate.Tags),
		candidate.SEOTitle,
		candidate.SEODescription,
	).Scan(&id)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return 0, domain.ErrSlugTaken
	}
	if err != nil {
		return 0, err
	}

	return id, nil
}

// SlugExists is used by pre-flight duplicate checks on the submission surface.
func (s *ArticleStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)", slug)
	return exists, err
}
