package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"editorial_ingest/internal/classify"
	"editorial_ingest/internal/domain"
	"editorial_ingest/internal/ingest"
)

type submissionRequest struct {
	Content            string  `json:"content" binding:"required"`
	ImageHint          *string `json:"imageHint"`
	AutoCorrectEnabled bool    `json:"autoCorrectEnabled"`
}

type submissionResponse struct {
	Mode     classify.Mode        `json:"mode"`
	URLCount int                  `json:"urlCount,omitempty"`
	JobIDs   []string             `json:"jobIds,omitempty"`
	Commit   *domain.CommitResult `json:"commit,omitempty"`
}

// handleSubmission classifies raw operator input and routes it: URL modes
// enqueue extraction jobs and return immediately, structured and text modes
// commit synchronously.
func (s *Server) handleSubmission(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classification, err := classify.Classify(req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}

	switch classification.Mode {
	case classify.ModeBatchURL, classify.ModeSingleURL:
		ids, err := s.submitter.Enqueue(c.Request.Context(), classification.URLs, req.ImageHint)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, submissionResponse{
			Mode:     classification.Mode,
			URLCount: len(classification.URLs),
			JobIDs:   ids,
		})

	case classify.ModeStructuredJSON:
		candidates, err := ingest.ParseStructured(classification.Payload)
		if err != nil {
			s.writeError(c, err)
			return
		}
		importType := domain.ImportSingle
		if len(candidates) > 1 {
			importType = domain.ImportBatch
		}
		result, err := s.importer.Commit(c.Request.Context(), candidates, ingest.CommitOptions{
			AutoCorrect: req.AutoCorrectEnabled,
			ImportType:  importType,
		})
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, submissionResponse{Mode: classification.Mode, Commit: result})

	case classify.ModeFreeText, classify.ModePreserveOriginal, classify.ModeManualStructured:
		preserve := classification.Mode == classify.ModePreserveOriginal
		candidate := ingest.NormalizeText(classification.Payload, preserve)
		if req.ImageHint != nil && *req.ImageHint != "" {
			candidate.HeroImage = req.ImageHint
		}
		result, err := s.importer.Commit(c.Request.Context(), []domain.ArticleCandidate{candidate}, ingest.CommitOptions{
			AutoCorrect: req.AutoCorrectEnabled,
			ImportType:  domain.ImportSingle,
		})
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, submissionResponse{Mode: classification.Mode, Commit: result})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported submission mode"})
	}
}

func (s *Server) handleListJobs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	jobs, err := s.jobs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type importRequest struct {
	Candidates         []domain.ArticleCandidate `json:"candidates" binding:"required"`
	AutoCorrectEnabled bool                      `json:"autoCorrectEnabled"`
	ImportType         domain.ImportType         `json:"importType"`
}

func (s *Server) handleImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidates must contain at least one item"})
		return
	}

	importType := req.ImportType
	if importType == "" {
		importType = domain.ImportSingle
		if len(req.Candidates) > 1 {
			importType = domain.ImportBatch
		}
	}

	result, err := s.importer.Commit(c.Request.Context(), req.Candidates, ingest.CommitOptions{
		AutoCorrect: req.AutoCorrectEnabled,
		ImportType:  importType,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAuditList(c *gin.Context) {
	var filter domain.AuditFilter
	if raw := c.Query("type"); raw != "" {
		filter.ImportType = domain.ImportType(raw)
	}
	filter.SourceText = c.Query("q")

	var err error
	if filter.From, err = parseDate(c.Query("from")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be an RFC 3339 date"})
		return
	}
	if filter.To, err = parseDate(c.Query("to")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be an RFC 3339 date"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	entries, total, err := s.audit.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (s *Server) handleAuditStats(c *gin.Context) {
	days := s.statsDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	stats, err := s.audit.Stats(c.Request.Context(), days)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var batchErr *domain.BatchSizeError
	var schemaErr *domain.SchemaError

	switch {
	case errors.As(err, &batchErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": batchErr.Error()})
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": schemaErr.Error(), "field": schemaErr.Field})
	case errors.Is(err, domain.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
