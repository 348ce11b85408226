package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brightwood-school/bwps-api/internal/models"
)

const inquiryColumns = `id, full_name, email, phone, subject, message, status, response, responded_by, responded_at, ip_address, created_at, updated_at`

// InquiryRepository provides persistence for contact inquiries.
type InquiryRepository struct {
	db *sqlx.DB
}

// NewInquiryRepository creates a new instance of InquiryRepository.
func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create inserts a new inquiry.
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.ContactInquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryNew
	}
	now := time.Now().UTC()
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now

	query := `INSERT INTO contact_inquiries (id, full_name, email, phone, subject, message, status, ip_address, created_at, updated_at) VALUES (:id, :full_name, :email, :phone, :subject, :message, :status, :ip_address, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inquiry); err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

// GetByID returns an inquiry by identifier.
func (r *InquiryRepository) GetByID(ctx context.Context, id string) (*models.ContactInquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM contact_inquiries WHERE id = $1 LIMIT 1`
	var inquiry models.ContactInquiry
	if err := r.db.GetContext(ctx, &inquiry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find inquiry by id: %w", err)
	}
	return &inquiry, nil
}

// List returns inquiries matching the filter together with the total count.
func (r *InquiryRepository) List(ctx context.Context, filter models.InquiryFilter) ([]models.ContactInquiry, int, error) {
	baseQuery := `FROM contact_inquiries WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Subject != nil {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, *filter.Subject)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(message) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", inquiryColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var inquiries []models.ContactInquiry
	if err := r.db.SelectContext(ctx, &inquiries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}

	return inquiries, total, nil
}

// UpdateStatus moves an inquiry through its handling states and records the
// optional response text alongside who wrote it.
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id string, status models.InquiryStatus, response *string, respondedBy string) (*models.ContactInquiry, error) {
	now := time.Now().UTC()

	var query string
	var args []interface{}
	if response != nil {
		query = `UPDATE contact_inquiries SET status = $2, response = $3, responded_by = $4, responded_at = $5, updated_at = $5 WHERE id = $1 RETURNING ` + inquiryColumns
		args = []interface{}{id, status, response, respondedBy, now}
	} else {
		query = `UPDATE contact_inquiries SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + inquiryColumns
		args = []interface{}{id, status, now}
	}

	var inquiry models.ContactInquiry
	if err := r.db.GetContext(ctx, &inquiry, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update inquiry status: %w", err)
	}
	return &inquiry, nil
}

// Delete removes an inquiry permanently.
func (r *InquiryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contact_inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inquiry: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
