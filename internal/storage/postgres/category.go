package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"editorial_ingest/internal/domain"
)

type CategoryStore struct {
	db *sqlx.DB
}

func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// Find resolves a category by exact case-insensitive match on name or slug.
// A missing category is (nil, nil).
func (s *CategoryStore) Find(ctx context.Context, nameOrSlug string) (*domain.Category, error) {
	query := `
		SELECT id, name, slug
		FROM categories
		WHERE LOWER(name) = LOWER($1) OR LOWER(slug) = LOWER($1)
		LIMIT 1`

	var category domain.Category
	err := s.db.GetContext(ctx, &category, query, nameOrSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
