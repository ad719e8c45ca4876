package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"editorial_ingest/internal/classify"
	"editorial_ingest/internal/domain"
	"editorial_ingest/internal/ingest"
	"editorial_ingest/internal/ingest/mocks"
	"editorial_ingest/testdata/utils"
)

type fakeSubmitter struct {
	enqueued    [][]string
	enqueueErr  error
	textContent []string
}

func (f *fakeSubmitter) Enqueue(_ context.Context, urls []string, _ *string) ([]string, error) {
	if f.enqueueErr != nil {
		return nil, f.enqueueErr
	}
	f.enqueued = append(f.enqueued, urls)
	ids := make([]string, len(urls))
	for i := range urls {
		ids[i] = fmt.Sprintf("job-%d", i)
	}
	return ids, nil
}

func (f *fakeSubmitter) EnqueueText(_ context.Context, content string, _ *string) (string, error) {
	f.textContent = append(f.textContent, content)
	return "job-text", nil
}

type fakeImporter struct {
	candidates []domain.ArticleCandidate
	opts       ingest.CommitOptions
	result     *domain.CommitResult
	err        error
}

func (f *fakeImporter) Commit(_ context.Context, candidates []domain.ArticleCandidate, opts ingest.CommitOptions) (*domain.CommitResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.candidates = candidates
	f.opts = opts
	if f.result != nil {
		return f.result, nil
	}
	return &domain.CommitResult{SuccessCount: len(candidates)}, nil
}

type HandlersTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	submitter *fakeSubmitter
	importer  *fakeImporter
	jobs      *mocks.MockJobQueue
	audit     *mocks.MockAuditStore
	router    *gin.Engine
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ctrl = gomock.NewController(s.T())
	s.submitter = &fakeSubmitter{}
	s.importer = &fakeImporter{}
	s.jobs = mocks.NewMockJobQueue(s.ctrl)
	s.audit = mocks.NewMockAuditStore(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	server := NewServer(s.submitter, s.importer, s.jobs, s.audit, 30, logger)
	s.router = server.Router()
}

func (s *HandlersTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlersTestSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersTestSuite) TestSubmission_BatchURLsAreEnqueued() {
	rec := s.postJSON("/api/submissions", gin.H{
		"content": "https://a.com/1\nhttps://a.com/2\nhttps://a.com/3",
	})

	s.Equal(http.StatusAccepted, rec.Code)

	var resp submissionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(classify.ModeBatchURL, resp.Mode)
	s.Equal(3, resp.URLCount)
	s.Len(resp.JobIDs, 3)
	s.Require().Len(s.submitter.enqueued, 1)
	s.Equal([]string{"https://a.com/1", "https://a.com/2", "https://a.com/3"}, s.submitter.enqueued[0])
}

func (s *HandlersTestSuite) TestSubmission_SingleURL() {
	rec := s.postJSON("/api/submissions", gin.H{"content": "https://a.com/materia"})

	s.Equal(http.StatusAccepted, rec.Code)

	var resp submissionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(classify.ModeSingleURL, resp.Mode)
	s.Len(resp.JobIDs, 1)
}

func (s *HandlersTestSuite) TestSubmission_OversizedBatchRejected() {
	content := ""
	for i := 0; i < 11; i++ {
		content += fmt.Sprintf("https://a.com/%d\n", i)
	}

	rec := s.postJSON("/api/submissions", gin.H{"content": content})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "maximum is 10")
	s.Empty(s.submitter.enqueued)
}

func (s *HandlersTestSuite) TestSubmission_StructuredJSONCommits() {
	payload := `structured-json {"noticias":[{"titulo":"Nova linha de ônibus","conteudo":"<p><strong>Lead.</strong></p>","tags":[],"seo":{}}]}`

	rec := s.postJSON("/api/submissions", gin.H{
		"content":            payload,
		"autoCorrectEnabled": true,
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.importer.candidates, 1)
	s.Equal("Nova linha de ônibus", s.importer.candidates[0].Title)
	s.Equal(domain.ImportSingle, s.importer.opts.ImportType)
	s.True(s.importer.opts.AutoCorrect)
}

func (s *HandlersTestSuite) TestSubmission_StructuredJSONSchemaViolation() {
	payload := `structured-json {"noticias":[{"titulo":"","conteudo":"x"}]}`

	rec := s.postJSON("/api/submissions", gin.H{"content": payload})

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "noticias[0].titulo")
	s.Empty(s.importer.candidates)
}

func (s *HandlersTestSuite) TestSubmission_FreeTextCommitsSingle() {
	rec := s.postJSON("/api/submissions", gin.H{
		"content": "Título da nota\n\nCorpo do texto corrido.",
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.importer.candidates, 1)
	s.Equal("Título da nota", s.importer.candidates[0].Title)
	s.Equal(domain.ImportSingle, s.importer.opts.ImportType)
}

func (s *HandlersTestSuite) TestSubmission_MissingContent() {
	rec := s.postJSON("/api/submissions", gin.H{})

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestGetJob_NotFound() {
	s.jobs.EXPECT().
		Get(gomock.Any(), "missing").
		Return(nil, domain.ErrJobNotFound)

	rec := s.get("/api/jobs/missing")

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersTestSuite) TestGetJob_ReturnsJob() {
	job := &domain.ExtractionJob{
		ID:        "job-1",
		InputType: domain.JobInputURL,
		Status:    domain.JobProcessing,
		Progress:  25,
	}
	s.jobs.EXPECT().Get(gomock.Any(), "job-1").Return(job, nil)

	rec := s.get("/api/jobs/job-1")

	s.Equal(http.StatusOK, rec.Code)
	var got domain.ExtractionJob
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal("job-1", got.ID)
	s.Equal(25, got.Progress)
}

func (s *HandlersTestSuite) TestListJobs_DefaultLimit() {
	s.jobs.EXPECT().
		ListRecent(gomock.Any(), 20).
		Return([]domain.ExtractionJob{{ID: "job-1"}}, nil)

	rec := s.get("/api/jobs")

	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlersTestSuite) TestImport_UsesProvidedImportType() {
	rec := s.postJSON("/api/imports", gin.H{
		"candidates": []gin.H{
			{"title": "A", "body": "<p><strong>x</strong></p>"},
		},
		"importType": "batch",
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(domain.ImportBatch, s.importer.opts.ImportType)
}

func (s *HandlersTestSuite) TestImport_EmptyCandidatesRejected() {
	rec := s.postJSON("/api/imports", gin.H{"candidates": []gin.H{}})

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestAuditList_PassesFilter() {
	s.audit.EXPECT().
		List(gomock.Any(), gomock.Any(), 2, 10).
		DoAndReturn(func(_ context.Context, filter domain.AuditFilter, _, _ int) ([]domain.ImportAuditEntry, int, error) {
			s.Equal(domain.ImportBatch, filter.ImportType)
			s.Equal("globo", filter.SourceText)
			return []domain.ImportAuditEntry{{ArticleSlug: "a", SourceName: utils.Ptr("G1")}}, 1, nil
		})

	rec := s.get("/api/audit?type=batch&q=globo&page=2&pageSize=10")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"total":1`)
}

func (s *HandlersTestSuite) TestAuditStats_InvalidDays() {
	rec := s.get("/api/audit/stats?days=zero")

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestAuditStats_ReturnsCounts() {
	s.audit.EXPECT().
		Stats(gomock.Any(), 7).
		Return(&domain.AuditStats{
			Total:  3,
			ByType: map[domain.ImportType]int{domain.ImportSingle: 1, domain.ImportBatch: 2},
		}, nil)

	rec := s.get("/api/audit/stats?days=7")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"total":3`)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
