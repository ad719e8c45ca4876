package domain

import "time"

// ArticleCandidate is the normalized unit flowing from extraction to commit.
type ArticleCandidate struct {
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	Excerpt        string   `json:"excerpt"`
	Body           string   `json:"body"` // HTML fragment
	CategoryName   string   `json:"category_name"`
	SourceURL      *string  `json:"source_url,omitempty"`
	HeroImage      *string  `json:"hero_image,omitempty"`
	ImageAlt       *string  `json:"image_alt,omitempty"`
	ImageCredit    *string  `json:"image_credit,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	SEOTitle       *string  `json:"seo_title,omitempty"`
	SEODescription *string  `json:"seo_description,omitempty"`
}

// Article is a committed candidate as stored.
type Article struct {
	ID         int64
	CategoryID int64
	ArticleCandidate
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

// DefaultCategoryName is the fallback when a candidate's category does not resolve.
const DefaultCategoryName = "Geral"
