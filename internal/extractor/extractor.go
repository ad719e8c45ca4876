// Package extractor implements the extraction worker: it claims queued jobs,
// turns URLs and pasted text into article candidates, and writes exactly one
// terminal state per job.
package extractor

import (
	"context"
	"fmt"
	"time"

	readability "github.com/go-shiori/go-readability"

	"editorial_ingest/internal/domain"
	"editorial_ingest/internal/ingest"
)

// Extractor produces a candidate from one job's payload.
type Extractor interface {
	Extract(ctx context.Context, job *domain.ExtractionJob) (*domain.ArticleCandidate, error)
}

// Readability extracts URL jobs via go-readability and normalizes text jobs
// locally, so both input types share one job contract.
type Readability struct {
	timeout time.Duration
}

func NewReadability(timeout time.Duration) *Readability {
	return &Readability{timeout: timeout}
}

func (e *Readability) Extract(ctx context.Context, job *domain.ExtractionJob) (*domain.ArticleCandidate, error) {
	switch job.InputType {
	case domain.JobInputText:
		candidate := ingest.NormalizeText(job.SourceContent, false)
		return &candidate, nil
	case domain.JobInputURL:
		return e.extractURL(job)
	default:
		return nil, fmt.Errorf("unknown input type %q", job.InputType)
	}
}

func (e *Readability) extractURL(job *domain.ExtractionJob) (*domain.ArticleCandidate, error) {
	article, err := readability.FromURL(job.SourceContent, e.timeout)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	if article.Title == "" {
		return nil, fmt.Errorf("page at %s has no extractable title", job.SourceContent)
	}

	sourceURL := job.SourceContent
	candidate := &domain.ArticleCandidate{
		Title:     article.Title,
		Slug:      domain.Slugify(article.Title),
		Excerpt:   article.Excerpt,
		Body:      article.Content,
		SourceURL: &sourceURL,
	}

	if job.ImageHint != nil && *job.ImageHint != "" {
		candidate.HeroImage = job.ImageHint
	} else if article.Image != "" {
		image := article.Image
		candidate.HeroImage = &image
	}

	return candidate, nil
}
