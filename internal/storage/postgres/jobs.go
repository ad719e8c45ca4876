package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"editorial_ingest/internal/domain"
)

// JobStore is the durable extraction queue. The portal side only enqueues and
// reads; claim, progress and terminal writes belong to the worker.
type JobStore struct {
	db *sqlx.DB
}

func NewJobStore(db *sqlx.DB) *JobStore {
	return &JobStore{db: db}
}

const jobColumns = `id, input_type, source_content, image_hint, status, progress, result, error, created_at, updated_at`

type jobRow struct {
	ID            string         `db:"id"`
	InputType     string         `db:"input_type"`
	SourceContent string         `db:"source_content"`
	ImageHint     sql.NullString `db:"image_hint"`
	Status        string         `db:"status"`
	Progress      int            `db:"progress"`
	Result        []byte         `db:"result"`
	Error         sql.NullString `db:"error"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r jobRow) toDomain() (*domain.ExtractionJob, error) {
	job := &domain.ExtractionJob{
		ID:            r.ID,
		InputType:     domain.JobInputType(r.InputType),
		SourceContent: r.SourceContent,
		Status:        domain.JobStatus(r.Status),
		Progress:      r.Progress,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.ImageHint.Valid {
		job.ImageHint = &r.ImageHint.String
	}
	if r.Error.Valid {
		job.Error = &r.Error.String
	}
	if len(r.Result) > 0 {
		var candidate domain.ArticleCandidate
		if err := json.Unmarshal(r.Result, &candidate); err != nil {
			return nil, fmt.Errorf("decode job result: %w", err)
		}
		job.Result = &candidate
	}
	return job, nil
}

// Enqueue inserts a queued job and returns immediately; it never blocks on
// the worker. Ids are caller-generated so concurrent batches cannot collide.
func (s *JobStore) Enqueue(ctx context.Context, job *domain.ExtractionJob) error {
	query := `
		INSERT INTO extraction_jobs (id, input_type, source_content, image_hint, status, progress)
		VALUES ($1, $2, $3, $4, $5, 0)`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.InputType,
		job.SourceContent,
		job.ImageHint,
		domain.JobQueued,
	)
	return err
}

func (s *JobStore) Get(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row,
		fmt.Sprintf("SELECT %s FROM extraction_jobs WHERE id = $1", jobColumns), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListRecent returns jobs newest-first for the polling surface.
func (s *JobStore) ListRecent(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	var rows []jobRow
	err := s.db.SelectContext(ctx, &rows,
		fmt.Sprintf("SELECT %s FROM extraction_jobs ORDER BY created_at DESC LIMIT $1", jobColumns), limit)
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.ExtractionJob, 0, len(rows))
	for _, row := range rows {
		job, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// ClaimNext atomically moves the oldest queued job into processing and
// returns it. Multiple workers can claim concurrently: SKIP LOCKED keeps
// them from fighting over the same row. (nil, nil) means the queue is empty.
func (s *JobStore) ClaimNext(ctx context.Context) (*domain.ExtractionJob, error) {
	query := fmt.Sprintf(`
		UPDATE extraction_jobs
		SET status = $1, updated_at = now()
		WHERE id = (
			SELECT id FROM extraction_jobs
			WHERE status = $2
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`, jobColumns)

	var row jobRow
	err := s.db.GetContext(ctx, &row, query, domain.JobProcessing, domain.JobQueued)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// SetProgress raises a processing job's progress. GREATEST keeps the value
// monotonically non-decreasing even under delayed writes.
func (s *JobStore) SetProgress(ctx context.Context, id string, progress int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE extraction_jobs
		SET progress = GREATEST(progress, $2), updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, progress, domain.JobProcessing)
	return err
}

// Complete writes the job's single terminal success state.
func (s *JobStore) Complete(ctx context.Context, id string, result *domain.ArticleCandidate) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE extraction_jobs
		SET status = $2, progress = 100, result = $3, updated_at = now()
		WHERE id = $1 AND status = $4`,
		id, domain.JobDone, payload, domain.JobProcessing)
	if err != nil {
		return err
	}
	return s.checkFinished(res)
}

// Fail writes the job's single terminal error state. Failed jobs are never
// retried here; the caller resubmits as a new job.
func (s *JobStore) Fail(ctx context.Context, id string, msg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE extraction_jobs
		SET status = $2, error = $3, updated_at = now()
		WHERE id = $1 AND status = $4`,
		id, domain.JobError, msg, domain.JobProcessing)
	if err != nil {
		return err
	}
	return s.checkFinished(res)
}

func (s *JobStore) checkFinished(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrJobTerminal
	}
	return nil
}
