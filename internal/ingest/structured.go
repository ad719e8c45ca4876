package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"editorial_ingest/internal/domain"
)

// Field-length limits of the structured-JSON input mode.
const (
	maxTitleLen    = 120
	maxExcerptLen  = 160
	maxMetaTitle   = 60
	maxMetaDescLen = 160
	maxTagLen      = 20
)

type structuredSEO struct {
	MetaTitulo    string `json:"meta_titulo"`
	MetaDescricao string `json:"meta_descricao"`
}

type structuredItem struct {
	Titulo    string        `json:"titulo"`
	Slug      string        `json:"slug"`
	Resumo    string        `json:"resumo"`
	Categoria string        `json:"categoria"`
	Fonte     *string       `json:"fonte,omitempty"`
	Conteudo  string        `json:"conteudo"`
	Tags      []string      `json:"tags"`
	SEO       structuredSEO `json:"seo"`
}

type structuredPayload struct {
	Noticias []structuredItem `json:"noticias"`
}

// ParseStructured decodes a structured-JSON submission into candidates.
// Any schema or limit violation rejects the whole submission before any
// commit, naming the offending field.
func ParseStructured(raw string) ([]domain.ArticleCandidate, error) {
	var payload structuredPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &domain.SchemaError{Field: "noticias", Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if len(payload.Noticias) == 0 {
		return nil, &domain.SchemaError{Field: "noticias", Reason: "must contain at least one item"}
	}

	candidates := make([]domain.ArticleCandidate, 0, len(payload.Noticias))
	for i, item := range payload.Noticias {
		if err := validateItem(i, item); err != nil {
			return nil, err
		}
		candidates = append(candidates, toCandidate(item))
	}
	return candidates, nil
}

func validateItem(i int, item structuredItem) error {
	field := func(name string) string { return fmt.Sprintf("noticias[%d].%s", i, name) }

	if strings.TrimSpace(item.Titulo) == "" {
		return &domain.SchemaError{Field: field("titulo"), Reason: "is required"}
	}
	if utf8.RuneCountInString(item.Titulo) > maxTitleLen {
		return &domain.SchemaError{Field: field("titulo"), Reason: fmt.Sprintf("exceeds %d characters", maxTitleLen)}
	}
	if strings.TrimSpace(item.Conteudo) == "" {
		return &domain.SchemaError{Field: field("conteudo"), Reason: "is required"}
	}
	if utf8.RuneCountInString(item.Resumo) > maxExcerptLen {
		return &domain.SchemaError{Field: field("resumo"), Reason: fmt.Sprintf("exceeds %d characters", maxExcerptLen)}
	}
	if utf8.RuneCountInString(item.SEO.MetaTitulo) > maxMetaTitle {
		return &domain.SchemaError{Field: field("seo.meta_titulo"), Reason: fmt.Sprintf("exceeds %d characters", maxMetaTitle)}
	}
	if utf8.RuneCountInString(item.SEO.MetaDescricao) > maxMetaDescLen {
		return &domain.SchemaError{Field: field("seo.meta_descricao"), Reason: fmt.Sprintf("exceeds %d characters", maxMetaDescLen)}
	}
	for j, tag := range item.Tags {
		if utf8.RuneCountInString(tag) > maxTagLen {
			return &domain.SchemaError{
				Field:  fmt.Sprintf("noticias[%d].tags[%d]", i, j),
				Reason: fmt.Sprintf("exceeds %d characters", maxTagLen),
			}
		}
	}
	return nil
}

func toCandidate(item structuredItem) domain.ArticleCandidate {
	slug := item.Slug
	if slug == "" {
		slug = domain.Slugify(item.Titulo)
	}

	candidate := domain.ArticleCandidate{
		Title:        item.Titulo,
		Slug:         slug,
		Excerpt:      item.Resumo,
		Body:         item.Conteudo,
		CategoryName: item.Categoria,
		SourceURL:    item.Fonte,
		Tags:         item.Tags,
	}
	if item.SEO.MetaTitulo != "" {
		candidate.SEOTitle = &item.SEO.MetaTitulo
	}
	if item.SEO.MetaDescricao != "" {
		candidate.SEODescription = &item.SEO.MetaDescricao
	}
	return candidate
}
