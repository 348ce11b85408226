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

const noticeColumns = `id, title, description, content, category, priority, publish_date, expiry_date, event_date, is_published, is_pinned, is_active, author, slug, views, created_at, updated_at`

const (
	ConstraintNoticeSlug = "notices_slug_key"
)

// NoticeRepository provides persistence for notices and their attachments.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository creates a new instance of NoticeRepository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// List returns notices matching the filter together with the total count.
// Attachments are loaded in a second query and stitched onto the page.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	baseQuery := `FROM notices WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}
	if filter.IsPublished != nil {
		conditions = append(conditions, fmt.Sprintf("is_published = $%d", len(args)+1))
		args = append(args, *filter.IsPublished)
	}
	if filter.IsPinned != nil {
		conditions = append(conditions, fmt.Sprintf("is_pinned = $%d", len(args)+1))
		args = append(args, *filter.IsPinned)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"publish_date": true,
		"created_at":   true,
		"updated_at":   true,
		"views":        true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "publish_date"
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

	// Pinned notices lead the board regardless of the chosen sort.
	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY is_pinned DESC, %s %s LIMIT %d OFFSET %d", noticeColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list notices: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notices: %w", err)
	}

	if err := r.attachFiles(ctx, notices); err != nil {
		return nil, 0, err
	}

	return notices, total, nil
}

func (r *NoticeRepository) attachFiles(ctx context.Context, notices []models.Notice) error {
	if len(notices) == 0 {
		return nil
	}
	ids := make([]string, len(notices))
	for i, n := range notices {
		ids[i] = n.ID
	}

	var attachments []models.NoticeAttachment
	query := `SELECT id, notice_id, file_name, file_url, file_type, file_size, created_at FROM notice_attachments WHERE notice_id = ANY($1) ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &attachments, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list notice attachments: %w", err)
	}

	byNotice := make(map[string][]models.NoticeAttachment, len(notices))
	for _, a := range attachments {
		byNotice[a.NoticeID] = append(byNotice[a.NoticeID], a)
	}
	for i := range notices {
		notices[i].Attachments = byNotice[notices[i].ID]
	}
	return nil
}

// GetByID returns a notice with its attachments.
func (r *NoticeRepository) GetByID(ctx context.Context, id string) (*models.Notice, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySlug returns a notice with its attachments by its URL slug.
func (r *NoticeRepository) GetBySlug(ctx context.Context, slug string) (*models.Notice, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *NoticeRepository) getOne(ctx context.Context, column, value string) (*models.Notice, error) {
	query := fmt.Sprintf("SELECT %s FROM notices WHERE %s = $1 LIMIT 1", noticeColumns, column)
	var notice models.Notice
	if err := r.db.GetContext(ctx, &notice, query, value); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notice by %s: %w", column, err)
	}

	var attachments []models.NoticeAttachment
	attQuery := `SELECT id, notice_id, file_name, file_url, file_type, file_size, created_at FROM notice_attachments WHERE notice_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &attachments, attQuery, notice.ID); err != nil {
		return nil, fmt.Errorf("list notice attachments: %w", err)
	}
	notice.Attachments = attachments

	return &notice, nil
}

// Create inserts a new notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	notice.CreatedAt = now
	notice.UpdatedAt = now

	query := `INSERT INTO notices (id, title, description, content, category, priority, publish_date, expiry_date, event_date, is_published, is_pinned, is_active, author, slug, views, created_at, updated_at) VALUES (:id, :title, :description, :content, :category, :priority, :publish_date, :expiry_date, :event_date, :is_published, :is_pinned, :is_active, :author, :slug, :views, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a notice.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	notice.UpdatedAt = time.Now().UTC()
	query := `UPDATE notices SET title = :title, description = :description, content = :content, category = :category, priority = :priority, publish_date = :publish_date, expiry_date = :expiry_date, event_date = :event_date, is_published = :is_published, is_pinned = :is_pinned, is_active = :is_active, author = :author, slug = :slug, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, notice)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a notice. Attachments go with it via ON DELETE CASCADE.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViews bumps the view counter by one.
func (r *NoticeRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notices SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment notice views: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddAttachment links a stored file to a notice.
func (r *NoticeRepository) AddAttachment(ctx context.Context, att *models.NoticeAttachment) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	att.CreatedAt = time.Now().UTC()

	query := `INSERT INTO notice_attachments (id, notice_id, file_name, file_url, file_type, file_size, created_at) VALUES (:id, :notice_id, :file_name, :file_url, :file_type, :file_size, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, att); err != nil {
		return fmt.Errorf("insert notice attachment: %w", err)
	}
	return nil
}

// DeleteAttachment removes a single attachment from a notice.
func (r *NoticeRepository) DeleteAttachment(ctx context.Context, noticeID, attachmentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notice_attachments WHERE id = $1 AND notice_id = $2`, attachmentID, noticeID)
	if err != nil {
		return fmt.Errorf("delete notice attachment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
