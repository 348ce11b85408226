package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brightwood-school/bwps-api/internal/models"
)

const exportJobColumns = `id, format, academic_year, status_filter, status, result_url, error_message, created_by, created_at, updated_at, finished_at`

// ExportJobRepository provides persistence for admissions-register export jobs.
type ExportJobRepository struct {
	db *sqlx.DB
}

// NewExportJobRepository creates a new instance of ExportJobRepository.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

// Create inserts a queued export job.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `INSERT INTO export_jobs (id, format, academic_year, status_filter, status, created_by, created_at, updated_at) VALUES (:id, :format, :academic_year, :status_filter, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("insert export job: %w", err)
	}
	return nil
}

// GetByID returns an export job by identifier.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	query := `SELECT ` + exportJobColumns + ` FROM export_jobs WHERE id = $1 LIMIT 1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find export job by id: %w", err)
	}
	return &job, nil
}

// MarkRunning transitions a queued job to RUNNING.
func (r *ExportJobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.setState(ctx, id, `UPDATE export_jobs SET status = $2, updated_at = $3 WHERE id = $1`, models.ExportStatusRunning)
}

// MarkCompleted records the result location and stamps the finish time.
func (r *ExportJobRepository) MarkCompleted(ctx context.Context, id, resultURL string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = $2, result_url = $3, updated_at = $4, finished_at = $4 WHERE id = $1`, id, models.ExportStatusCompleted, resultURL, now)
	if err != nil {
		return fmt.Errorf("complete export job: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkFailed records the failure reason and stamps the finish time.
func (r *ExportJobRepository) MarkFailed(ctx context.Context, id, reason string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = $2, error_message = $3, updated_at = $4, finished_at = $4 WHERE id = $1`, id, models.ExportStatusFailed, reason, now)
	if err != nil {
		return fmt.Errorf("fail export job: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ExportJobRepository) setState(ctx context.Context, id, query string, status models.ExportStatus) error {
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update export job status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListFinishedBefore returns completed or failed jobs older than the cutoff,
// used by the retention sweep.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	query := `SELECT ` + exportJobColumns + ` FROM export_jobs WHERE finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at`
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff); err != nil {
		return nil, fmt.Errorf("list finished export jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes an export job record.
func (r *ExportJobRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM export_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete export job: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
