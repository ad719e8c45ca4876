// Package api exposes the editorial ingestion pipeline over HTTP.
package api

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"editorial_ingest/internal/domain"
	"editorial_ingest/internal/ingest"
)

// Submitter enqueues extraction jobs for URL and text submissions.
type Submitter interface {
	Enqueue(ctx context.Context, urls []string, imageHint *string) ([]string, error)
	EnqueueText(ctx context.Context, content string, imageHint *string) (string, error)
}

// Importer commits candidates into the portal.
type Importer interface {
	Commit(ctx context.Context, candidates []domain.ArticleCandidate, opts ingest.CommitOptions) (*domain.CommitResult, error)
}

// Server wires the pipeline services into HTTP handlers.
type Server struct {
	submitter Submitter
	importer  Importer
	jobs      ingest.JobQueue
	audit     ingest.AuditStore
	statsDays int
	logger    *slog.Logger
}

// NewServer builds the HTTP surface. statsDays is the default rolling window
// for audit statistics when the request does not name one.
func NewServer(submitter Submitter, importer Importer, jobs ingest.JobQueue, audit ingest.AuditStore, statsDays int, logger *slog.Logger) *Server {
	if statsDays < 1 {
		statsDays = 30
	}
	return &Server{
		submitter: submitter,
		importer:  importer,
		jobs:      jobs,
		audit:     audit,
		statsDays: statsDays,
		logger:    logger.With("component", "api"),
	}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/submissions", s.handleSubmission)
		api.GET("/jobs", s.handleListJobs)
		api.GET("/jobs/:id", s.handleGetJob)
		api.POST("/imports", s.handleImport)
		api.GET("/audit", s.handleAuditList)
		api.GET("/audit/stats", s.handleAuditStats)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
