package domain

import "time"

type ImportType string

const (
	ImportSingle ImportType = "single"
	ImportBatch  ImportType = "batch"
)

type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditError   AuditStatus = "error"
)

// ImportAuditEntry records one commit attempt. Entries are append-only and
// written exactly once per attempted candidate, success or failure.
type ImportAuditEntry struct {
	ID              int64       `db:"id" json:"id"`
	ArticleTitle    string      `db:"article_title" json:"article_title"`
	ArticleSlug     string      `db:"article_slug" json:"article_slug"`
	SourceURL       *string     `db:"source_url" json:"source_url,omitempty"`
	SourceName      *string     `db:"source_name" json:"source_name,omitempty"`
	ImportType      ImportType  `db:"import_type" json:"import_type"`
	FormatCorrected bool        `db:"format_corrected" json:"format_corrected"`
	Status          AuditStatus `db:"status" json:"status"`
	ErrorMessage    *string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// AuditFilter narrows audit listings. Zero values mean "no constraint".
type AuditFilter struct {
	ImportType ImportType
	From       time.Time
	To         time.Time
	SourceText string
}

// AuditStats summarizes commit attempts over a rolling window.
type AuditStats struct {
	Total  int                `json:"total"`
	ByType map[ImportType]int `json:"by_type"`
}
