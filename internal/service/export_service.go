package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightwood-school/bwps-api/internal/models"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
	"github.com/brightwood-school/bwps-api/pkg/export"
	"github.com/brightwood-school/bwps-api/pkg/jobs"
	"github.com/brightwood-school/bwps-api/pkg/storage"
)

type exportJobRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, resultURL string) error
	MarkFailed(ctx context.Context, id, reason string) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

type exportSourceRepository interface {
	ListForExport(ctx context.Context, academicYear string, status *models.ApplicationStatus) ([]models.AdmissionApplication, error)
}

// ExportServiceConfig tunes the register export pipeline.
type ExportServiceConfig struct {
	Workers int
	Retries int
	// ResultTTL bounds how long rendered files and finished job records
	// are kept before the cleanup loop removes them.
	ResultTTL time.Duration
	// DownloadPath is the route serving signed downloads, used to build
	// the result URL stored on completed jobs.
	DownloadPath string
}

// ExportService renders the admissions register to CSV or PDF in the
// background. Jobs are queued, processed by a worker pool and served back
// through signed download URLs.
type ExportService struct {
	jobsRepo     exportJobRepository
	source       exportSourceRepository
	store        *storage.LocalStorage
	signer       *storage.SignedURLSigner
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	queue        *jobs.Queue
	validator    *validator.Validate
	logger       *zap.Logger
	resultTTL    time.Duration
	downloadPath string
}

// NewExportService constructs the export pipeline and its worker queue. The
// queue is not started; call Start once the process is ready.
func NewExportService(jobsRepo exportJobRepository, source exportSourceRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ExportServiceConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/exports/download"
	}

	s := &ExportService{
		jobsRepo:     jobsRepo,
		source:       source,
		store:        store,
		signer:       signer,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		validator:    validate,
		logger:       logger,
		resultTTL:    cfg.ResultTTL,
		downloadPath: cfg.DownloadPath,
	}
	s.queue = jobs.NewQueue("register-export", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Queue records a new export request and hands it to the worker pool.
func (s *ExportService) Queue(ctx context.Context, req models.CreateExportRequest, createdBy string) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	job := &models.ExportJob{
		Format:       req.Format,
		AcademicYear: req.AcademicYear,
		StatusFilter: req.Status,
		Status:       models.ExportStatusQueued,
		CreatedBy:    createdBy,
	}
	if err := s.jobsRepo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "register_export", Payload: job.ID}); err != nil {
		if markErr := s.jobsRepo.MarkFailed(ctx, job.ID, "queue unavailable"); markErr != nil {
			s.logger.Warn("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return job, nil
}

// Get returns the current state of an export job.
func (s *ExportService) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.jobsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch export job")
	}
	return job, nil
}

// Open resolves a signed download token to the rendered file. Expired or
// tampered tokens are refused.
func (s *ExportService) Open(ctx context.Context, token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "Download link is invalid or has expired")
	}

	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, "", err
	}
	if job.Status != models.ExportStatusCompleted {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "Export job not found")
	}

	f, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "Export file no longer available")
	}
	return f, relPath, nil
}

// Cleanup removes rendered files and job records past the retention window.
func (s *ExportService) Cleanup(ctx context.Context) {
	if removed, err := s.store.CleanupOlderThan(s.resultTTL); err != nil {
		s.logger.Warn("export file cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Info("removed expired export files", zap.Int("count", len(removed)))
	}

	cutoff := time.Now().UTC().Add(-s.resultTTL)
	old, err := s.jobsRepo.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Warn("export job cleanup failed", zap.Error(err))
		return
	}
	for _, job := range old {
		if err := s.jobsRepo.Delete(ctx, job.ID); err != nil {
			s.logger.Warn("failed to delete expired export job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// RunCleanupLoop blocks, sweeping expired exports until the context ends.
func (s *ExportService) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup(ctx)
		}
	}
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	jobID, _ := job.Payload.(string)
	if jobID == "" {
		jobID = job.ID
	}

	record, err := s.jobsRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}

	if err := s.jobsRepo.MarkRunning(ctx, record.ID); err != nil {
		return fmt.Errorf("mark export job running: %w", err)
	}

	data, renderErr := s.render(ctx, record)
	if renderErr != nil {
		if err := s.jobsRepo.MarkFailed(ctx, record.ID, renderErr.Error()); err != nil {
			s.logger.Warn("failed to mark export job failed", zap.String("job_id", record.ID), zap.Error(err))
		}
		return renderErr
	}

	filename := fmt.Sprintf("register-%s.%s", record.ID, record.Format)
	if _, err := s.store.Save(filename, data); err != nil {
		if markErr := s.jobsRepo.MarkFailed(ctx, record.ID, "failed to store export file"); markErr != nil {
			s.logger.Warn("failed to mark export job failed", zap.String("job_id", record.ID), zap.Error(markErr))
		}
		return fmt.Errorf("store export file: %w", err)
	}

	token, _, err := s.signer.Generate(record.ID, filename)
	if err != nil {
		return fmt.Errorf("sign export url: %w", err)
	}
	resultURL := fmt.Sprintf("%s?token=%s", s.downloadPath, token)
	if err := s.jobsRepo.MarkCompleted(ctx, record.ID, resultURL); err != nil {
		return fmt.Errorf("mark export job completed: %w", err)
	}

	s.logger.Info("export job completed",
		zap.String("job_id", record.ID),
		zap.String("format", string(record.Format)))
	return nil
}

func (s *ExportService) render(ctx context.Context, record *models.ExportJob) ([]byte, error) {
	year := ""
	if record.AcademicYear != nil {
		year = *record.AcademicYear
	}
	var status *models.ApplicationStatus
	if record.StatusFilter != nil {
		st := models.ApplicationStatus(*record.StatusFilter)
		status = &st
	}

	apps, err := s.source.ListForExport(ctx, year, status)
	if err != nil {
		return nil, fmt.Errorf("load register rows: %w", err)
	}

	dataset := registerDataset(apps)
	switch record.Format {
	case models.ExportFormatCSV:
		return s.csv.Render(dataset)
	case models.ExportFormatPDF:
		title := "Admissions Register"
		if year != "" {
			title = fmt.Sprintf("Admissions Register %s", year)
		}
		return s.pdf.Render(dataset, title)
	default:
		return nil, fmt.Errorf("unsupported export format %q", record.Format)
	}
}

func registerDataset(apps []models.AdmissionApplication) export.Dataset {
	headers := []string{"Application Number", "Student Name", "Class", "Academic Year", "Category", "Status", "Father Name", "Father Phone", "Submitted At"}
	rows := make([]map[string]string, 0, len(apps))
	for _, app := range apps {
		name := app.StudentFirstName
		if app.StudentMiddleName != nil && *app.StudentMiddleName != "" {
			name += " " + *app.StudentMiddleName
		}
		name += " " + app.StudentLastName
		rows = append(rows, map[string]string{
			"Application Number": app.ApplicationNumber,
			"Student Name":       name,
			"Class":              app.ClassApplyingFor,
			"Academic Year":      app.AcademicYear,
			"Category":           string(app.Category),
			"Status":             string(app.Status),
			"Father Name":        app.FatherName,
			"Father Phone":       app.FatherPhone,
			"Submitted At":       app.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
