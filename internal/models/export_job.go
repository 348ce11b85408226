package models

import "time"

// ExportFormat selects the rendered file type for a register export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus tracks the lifecycle of an export job.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "QUEUED"
	ExportStatusRunning   ExportStatus = "RUNNING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportJob is an asynchronous admissions-register export request.
type ExportJob struct {
	ID           string       `db:"id" json:"id"`
	Format       ExportFormat `db:"format" json:"format"`
	AcademicYear *string      `db:"academic_year" json:"academic_year,omitempty"`
	StatusFilter *string      `db:"status_filter" json:"status_filter,omitempty"`
	Status       ExportStatus `db:"status" json:"status"`
	ResultURL    *string      `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string       `db:"created_by" json:"created_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
}
