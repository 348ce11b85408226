package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/brightwood-school/bwps-api/internal/models"
)

const admissionColumns = `id, application_number, student_first_name, student_middle_name, student_last_name, date_of_birth, gender, blood_group, nationality, religion, category, aadhar_number, class_applying_for, previous_school, previous_class, academic_year, father_name, father_occupation, father_phone, father_email, mother_name, mother_occupation, mother_phone, mother_email, guardian_name, guardian_relation, guardian_phone, guardian_email, current_address, current_city, current_state, current_pincode, permanent_address, permanent_city, permanent_state, permanent_pincode, medical_conditions, special_needs, birth_certificate, photo_url, transfer_certificate, address_proof, status, reviewed_by, reviewed_at, remarks, created_at, updated_at`

const admissionInsert = `INSERT INTO admission_applications (id, application_number, student_first_name, student_middle_name, student_last_name, date_of_birth, gender, blood_group, nationality, religion, category, aadhar_number, class_applying_for, previous_school, previous_class, academic_year, father_name, father_occupation, father_phone, father_email, mother_name, mother_occupation, mother_phone, mother_email, guardian_name, guardian_relation, guardian_phone, guardian_email, current_address, current_city, current_state, current_pincode, permanent_address, permanent_city, permanent_state, permanent_pincode, medical_conditions, special_needs, birth_certificate, photo_url, transfer_certificate, address_proof, status, created_at, updated_at) VALUES (:id, :application_number, :student_first_name, :student_middle_name, :student_last_name, :date_of_birth, :gender, :blood_group, :nationality, :religion, :category, :aadhar_number, :class_applying_for, :previous_school, :previous_class, :academic_year, :father_name, :father_occupation, :father_phone, :father_email, :mother_name, :mother_occupation, :mother_phone, :mother_email, :guardian_name, :guardian_relation, :guardian_phone, :guardian_email, :current_address, :current_city, :current_state, :current_pincode, :permanent_address, :permanent_city, :permanent_state, :permanent_pincode, :medical_conditions, :special_needs, :birth_certificate, :photo_url, :transfer_certificate, :address_proof, :status, :created_at, :updated_at)`

// UniqueConstraint names enforced on the admission_applications table.
const (
	ConstraintApplicationNumber = "admission_applications_application_number_key"
	ConstraintAadharNumber      = "admission_applications_aadhar_number_key"
)

// AdmissionRepository provides persistence for admission applications.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository creates a new instance of AdmissionRepository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// CreateWithNumber assigns the next application number for the academic year
// and inserts the record, both inside one transaction. The sequence is the
// count of applications already stored for that exact academic year plus one,
// zero-padded to four digits behind the institutional prefix and the leading
// year segment (prefix "BW", year "2025-26", seventh application →
// "BW20250007").
//
// Two concurrent submissions can still read the same count; the unique
// constraint on application_number rejects the loser and the service layer
// retries with a fresh count.
func (r *AdmissionRepository) CreateWithNumber(ctx context.Context, app *models.AdmissionApplication, prefix string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create application tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing int
	if err = tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM admission_applications WHERE academic_year = $1`, app.AcademicYear); err != nil {
		return fmt.Errorf("count applications for year: %w", err)
	}

	year := strings.SplitN(app.AcademicYear, "-", 2)[0]
	app.ApplicationNumber = fmt.Sprintf("%s%s%04d", prefix, year, existing+1)

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.StatusPending
	}

	if _, err = tx.NamedExecContext(ctx, admissionInsert, app); err != nil {
		return fmt.Errorf("insert application: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create application tx: %w", err)
	}
	return nil
}

// GetByID returns an application by identifier.
func (r *AdmissionRepository) GetByID(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	query := `SELECT ` + admissionColumns + ` FROM admission_applications WHERE id = $1 LIMIT 1`
	var app models.AdmissionApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// GetByNumber returns an application by its application number.
func (r *AdmissionRepository) GetByNumber(ctx context.Context, number string) (*models.AdmissionApplication, error) {
	query := `SELECT ` + admissionColumns + ` FROM admission_applications WHERE application_number = $1 LIMIT 1`
	var app models.AdmissionApplication
	if err := r.db.GetContext(ctx, &app, query, number); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by number: %w", err)
	}
	return &app, nil
}

// List returns applications based on filters with total count.
func (r *AdmissionRepository) List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, int, error) {
	baseQuery := `FROM admission_applications WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.ClassApplyingFor != "" {
		conditions = append(conditions, fmt.Sprintf("class_applying_for = $%d", len(args)+1))
		args = append(args, filter.ClassApplyingFor)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(student_first_name) LIKE $%d OR LOWER(student_last_name) LIKE $%d OR LOWER(application_number) LIKE $%d OR LOWER(father_name) LIKE $%d OR LOWER(mother_name) LIKE $%d)", idx, idx, idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at":         true,
		"updated_at":         true,
		"application_number": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", admissionColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var apps []models.AdmissionApplication
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return apps, total, nil
}

// UpdateStatus applies a review decision and stamps the reviewer fields.
func (r *AdmissionRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks *string, reviewedBy string) (*models.AdmissionApplication, error) {
	now := time.Now().UTC()
	query := `UPDATE admission_applications SET status = $2, remarks = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5 WHERE id = $1 RETURNING ` + admissionColumns
	var app models.AdmissionApplication
	if err := r.db.GetContext(ctx, &app, query, id, status, remarks, reviewedBy, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return &app, nil
}

// BulkUpdateStatus applies a review decision to several applications at once
// and returns how many rows changed.
func (r *AdmissionRepository) BulkUpdateStatus(ctx context.Context, ids []string, status models.ApplicationStatus, reviewedBy string) (int64, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE admission_applications SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4 WHERE id = ANY($1)`, pq.Array(ids), status, reviewedBy, now)
	if err != nil {
		return 0, fmt.Errorf("bulk update application status: %w", err)
	}
	updated, _ := res.RowsAffected()
	return updated, nil
}

// Delete removes an application permanently.
func (r *AdmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admission_applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListForExport streams every application matching the register scope,
// ordered by application number. No pagination; exports want the full set.
func (r *AdmissionRepository) ListForExport(ctx context.Context, academicYear string, status *models.ApplicationStatus) ([]models.AdmissionApplication, error) {
	query := `SELECT ` + admissionColumns + ` FROM admission_applications WHERE 1=1`
	var args []interface{}
	if academicYear != "" {
		args = append(args, academicYear)
		query += fmt.Sprintf(" AND academic_year = $%d", len(args))
	}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY application_number"

	var apps []models.AdmissionApplication
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list applications for export: %w", err)
	}
	return apps, nil
}

// Stats returns application totals per status, optionally scoped to one
// academic year.
func (r *AdmissionRepository) Stats(ctx context.Context, academicYear string) (*models.AdmissionStats, error) {
	query := `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
COUNT(*) FILTER (WHERE status = 'UNDER_REVIEW') AS under_review,
COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved,
COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
COUNT(*) FILTER (WHERE status = 'WAITLISTED') AS waitlisted,
COUNT(*) FILTER (WHERE status = 'ADMITTED') AS admitted
FROM admission_applications`
	var args []interface{}
	if academicYear != "" {
		query += ` WHERE academic_year = $1`
		args = append(args, academicYear)
	}

	var stats models.AdmissionStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("admission stats: %w", err)
	}
	return &stats, nil
}
