//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"editorial_ingest/internal/domain"
	"editorial_ingest/testdata/utils"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_categories.up.sql"),
			filepath.Join(migrationsPath, "002_create_articles.up.sql"),
			filepath.Join(migrationsPath, "003_create_extraction_jobs.up.sql"),
			filepath.Join(migrationsPath, "004_create_import_audit.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM import_audit")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM extraction_jobs")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM articles")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM categories WHERE name <> 'Geral'")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) seedCategory(name, slug string) int64 {
	var id int64
	err := s.db.QueryRowxContext(s.ctx,
		"INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id", name, slug).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *PostgresIntegrationSuite) defaultCategoryID() int64 {
	var id int64
	err := s.db.GetContext(s.ctx, &id, "SELECT id FROM categories WHERE name = 'Geral'")
	s.Require().NoError(err)
	return id
}

func (s *PostgresIntegrationSuite) TestArticleStore_Insert() {
	store := NewArticleStore(s.db)
	categoryID := s.defaultCategoryID()

	candidate := &domain.ArticleCandidate{
		Title:     "Nova ciclovia na orla",
		Slug:      "nova-ciclovia-na-orla",
		Excerpt:   "Resumo da matéria.",
		Body:      "<p><strong>Lead em negrito.</strong></p>",
		SourceURL: utils.Ptr("https://example.com/materia"),
		Tags:      []string{"mobilidade", "orla"},
		SEOTitle:  utils.Ptr("Ciclovia na orla"),
	}

	id, err := store.Insert(s.ctx, candidate, categoryID)
	s.NoError(err)
	s.Greater(id, int64(0))

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM articles WHERE slug = $1", "nova-ciclovia-na-orla")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestArticleStore_Insert_SlugTaken() {
	store := NewArticleStore(s.db)
	categoryID := s.defaultCategoryID()

	candidate := &domain.ArticleCandidate{
		Title: "Primeira",
		Slug:  "mesmo-slug",
		Body:  "<p><strong>a</strong></p>",
	}
	_, err := store.Insert(s.ctx, candidate, categoryID)
	s.NoError(err)

	candidate.Title = "Segunda"
	_, err = store.Insert(s.ctx, candidate, categoryID)
	s.ErrorIs(err, domain.ErrSlugTaken)
}

func (s *PostgresIntegrationSuite) TestArticleStore_SlugExists() {
	store := NewArticleStore(s.db)
	categoryID := s.defaultCategoryID()

	exists, err := store.SlugExists(s.ctx, "ainda-nao-existe")
	s.NoError(err)
	s.False(exists)

	_, err = store.Insert(s.ctx, &domain.ArticleCandidate{
		Title: "Existente", Slug: "ainda-nao-existe", Body: "<p><strong>x</strong></p>",
	}, categoryID)
	s.NoError(err)

	exists, err = store.SlugExists(s.ctx, "ainda-nao-existe")
	s.NoError(err)
	s.True(exists)
}

func (s *PostgresIntegrationSuite) TestCategoryStore_Find_CaseInsensitive() {
	store := NewCategoryStore(s.db)
	s.seedCategory("Política", "politica")

	byName, err := store.Find(s.ctx, "política")
	s.NoError(err)
	s.Require().NotNil(byName)
	s.Equal("Política", byName.Name)

	bySlug, err := store.Find(s.ctx, "POLITICA")
	s.NoError(err)
	s.Require().NotNil(bySlug)
	s.Equal(byName.ID, bySlug.ID)
}

func (s *PostgresIntegrationSuite) TestCategoryStore_Find_MissingIsNil() {
	store := NewCategoryStore(s.db)

	category, err := store.Find(s.ctx, "inexistente")
	s.NoError(err)
	s.Nil(category)
}

func (s *PostgresIntegrationSuite) TestJobStore_Lifecycle() {
	store := NewJobStore(s.db)

	job := &domain.ExtractionJob{
		ID:            "job-lifecycle",
		InputType:     domain.JobInputURL,
		SourceContent: "https://example.com/materia",
		ImageHint:     utils.Ptr("https://example.com/capa.jpg"),
	}
	s.NoError(store.Enqueue(s.ctx, job))

	claimed, err := store.ClaimNext(s.ctx)
	s.NoError(err)
	s.Require().NotNil(claimed)
	s.Equal("job-lifecycle", claimed.ID)
	s.Equal(domain.JobProcessing, claimed.Status)

	s.NoError(store.SetProgress(s.ctx, claimed.ID, 25))

	// Progress never goes backwards.
	s.NoError(store.SetProgress(s.ctx, claimed.ID, 10))
	got, err := store.Get(s.ctx, claimed.ID)
	s.NoError(err)
	s.Equal(25, got.Progress)

	result := &domain.ArticleCandidate{Title: "Extraída", Slug: "extraida", Body: "<p><strong>x</strong></p>"}
	s.NoError(store.Complete(s.ctx, claimed.ID, result))

	got, err = store.Get(s.ctx, claimed.ID)
	s.NoError(err)
	s.Equal(domain.JobDone, got.Status)
	s.Equal(100, got.Progress)
	s.Require().NotNil(got.Result)
	s.Equal("Extraída", got.Result.Title)
}

func (s *PostgresIntegrationSuite) TestJobStore_TerminalIsImmutable() {
	store := NewJobStore(s.db)

	job := &domain.ExtractionJob{
		ID:            "job-terminal",
		InputType:     domain.JobInputURL,
		SourceContent: "https://example.com/a",
	}
	s.NoError(store.Enqueue(s.ctx, job))

	claimed, err := store.ClaimNext(s.ctx)
	s.NoError(err)
	s.Require().NotNil(claimed)

	s.NoError(store.Fail(s.ctx, claimed.ID, "page returned 404"))

	err = store.Complete(s.ctx, claimed.ID, &domain.ArticleCandidate{Title: "x"})
	s.ErrorIs(err, domain.ErrJobTerminal)

	err = store.Fail(s.ctx, claimed.ID, "again")
	s.ErrorIs(err, domain.ErrJobTerminal)

	got, err := store.Get(s.ctx, claimed.ID)
	s.NoError(err)
	s.Equal(domain.JobError, got.Status)
	s.Require().NotNil(got.Error)
	s.Equal("page returned 404", *got.Error)
}

func (s *PostgresIntegrationSuite) TestJobStore_ClaimNext_EmptyQueue() {
	store := NewJobStore(s.db)

	job, err := store.ClaimNext(s.ctx)
	s.NoError(err)
	s.Nil(job)
}

func (s *PostgresIntegrationSuite) TestJobStore_Get_NotFound() {
	store := NewJobStore(s.db)

	_, err := store.Get(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrJobNotFound)
}

func (s *PostgresIntegrationSuite) TestJobStore_ListRecent_NewestFirst() {
	store := NewJobStore(s.db)

	for _, id := range []string{"job-a", "job-b", "job-c"} {
		s.NoError(store.Enqueue(s.ctx, &domain.ExtractionJob{
			ID:            id,
			InputType:     domain.JobInputURL,
			SourceContent: "https://example.com/" + id,
		}))
		time.Sleep(5 * time.Millisecond)
	}

	jobs, err := store.ListRecent(s.ctx, 2)
	s.NoError(err)
	s.Require().Len(jobs, 2)
	s.Equal("job-c", jobs[0].ID)
	s.Equal("job-b", jobs[1].ID)
}

func (s *PostgresIntegrationSuite) TestAuditStore_RecordAndList() {
	store := NewAuditStore(s.db)

	entries := []*domain.ImportAuditEntry{
		{
			ArticleTitle: "Matéria A",
			ArticleSlug:  "materia-a",
			SourceName:   utils.Ptr("Portal X"),
			ImportType:   domain.ImportBatch,
			Status:       domain.AuditSuccess,
		},
		{
			ArticleTitle: "Matéria B",
			ArticleSlug:  "materia-b",
			ImportType:   domain.ImportSingle,
			Status:       domain.AuditError,
			ErrorMessage: utils.Ptr("slug already in use"),
		},
	}
	for _, entry := range entries {
		s.NoError(store.Record(s.ctx, entry))
		s.Greater(entry.ID, int64(0))
		s.False(entry.CreatedAt.IsZero())
	}

	all, total, err := store.List(s.ctx, domain.AuditFilter{}, 1, 20)
	s.NoError(err)
	s.Equal(2, total)
	s.Len(all, 2)

	batchOnly, total, err := store.List(s.ctx, domain.AuditFilter{ImportType: domain.ImportBatch}, 1, 20)
	s.NoError(err)
	s.Equal(1, total)
	s.Require().Len(batchOnly, 1)
	s.Equal("materia-a", batchOnly[0].ArticleSlug)

	bySource, total, err := store.List(s.ctx, domain.AuditFilter{SourceText: "portal"}, 1, 20)
	s.NoError(err)
	s.Equal(1, total)
	s.Require().Len(bySource, 1)
	s.Equal("materia-a", bySource[0].ArticleSlug)
}

func (s *PostgresIntegrationSuite) TestAuditStore_Stats() {
	store := NewAuditStore(s.db)

	for i := 0; i < 3; i++ {
		s.NoError(store.Record(s.ctx, &domain.ImportAuditEntry{
			ArticleTitle: "Batch",
			ArticleSlug:  "batch",
			ImportType:   domain.ImportBatch,
			Status:       domain.AuditSuccess,
		}))
	}
	s.NoError(store.Record(s.ctx, &domain.ImportAuditEntry{
		ArticleTitle: "Single",
		ArticleSlug:  "single",
		ImportType:   domain.ImportSingle,
		Status:       domain.AuditSuccess,
	}))

	stats, err := store.Stats(s.ctx, 30)
	s.NoError(err)
	s.Equal(4, stats.Total)
	s.Equal(3, stats.ByType[domain.ImportBatch])
	s.Equal(1, stats.ByType[domain.ImportSingle])
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	articleStore := NewArticleStore(s.db)
	auditStore := NewAuditStore(s.db)
	categoryID := s.defaultCategoryID()

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := articleStore.Insert(ctx, &domain.ArticleCandidate{
			Title: "Sem rastro", Slug: "sem-rastro", Body: "<p><strong>x</strong></p>",
		}, categoryID)
		if err != nil {
			return err
		}

		if err := auditStore.Record(ctx, &domain.ImportAuditEntry{
			ArticleTitle: "Sem rastro",
			ArticleSlug:  "sem-rastro",
			ImportType:   domain.ImportSingle,
			Status:       domain.AuditSuccess,
		}); err != nil {
			return err
		}

		return context.Canceled
	})
	s.Error(err)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM articles WHERE slug = 'sem-rastro'"))
	s.Equal(0, count)
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM import_audit WHERE article_slug = 'sem-rastro'"))
	s.Equal(0, count)
}
