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

const adminColumns = `id, email, password_hash, name, role, is_active, last_login, created_at, updated_at`

// AdminRepository provides database access for back-office accounts.
//
// Mutations that can shrink the active super-admin set (Delete, BulkDelete,
// ToggleStatus) run inside a transaction that locks the active super-admin
// rows before counting, so two concurrent requests cannot both observe a
// safe count and proceed.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByEmail returns an admin by email address.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &admin, nil
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// List returns admins based on filters with total count.
func (r *AdminRepository) List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, int, error) {
	baseQuery := `FROM admins WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"email":      true,
		"name":       true,
		"last_login": true,
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", adminColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list admins: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count admins: %w", err)
	}

	return admins, total, nil
}

// Create inserts a new admin account.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now

	const query = `INSERT INTO admins (id, email, password_hash, name, role, is_active, created_at, updated_at) VALUES (:id, :email, :password_hash, :name, :role, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// Update updates mutable fields of an admin account.
func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	admin.UpdatedAt = time.Now().UTC()
	const query = `UPDATE admins SET email = :email, name = :name, role = :role, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the last_login timestamp.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE admins SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE admins SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes an admin account permanently. Deleting the last active
// super admin is refused with ErrSuperAdminFloor and leaves state unchanged.
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete admin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var target struct {
		Role     models.AdminRole `db:"role"`
		IsActive bool             `db:"is_active"`
	}
	if err = tx.GetContext(ctx, &target, `SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("load admin for delete: %w", err)
	}

	if target.Role == models.RoleSuperAdmin && target.IsActive {
		var remaining int
		remaining, err = lockActiveSuperAdmins(ctx, tx)
		if err != nil {
			return err
		}
		if remaining <= 1 {
			err = ErrSuperAdminFloor
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete admin tx: %w", err)
	}
	return nil
}

// BulkDelete removes the given accounts in one atomic batch. If the batch
// would remove every active super admin, nothing is deleted and
// ErrSuperAdminFloor is returned.
func (r *AdminRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var activeSupers []string
	if err = tx.SelectContext(ctx, &activeSupers, `SELECT id FROM admins WHERE role = $1 AND is_active = TRUE ORDER BY id FOR UPDATE`, models.RoleSuperAdmin); err != nil {
		return 0, fmt.Errorf("lock active super admins: %w", err)
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}
	inBatch := 0
	for _, id := range activeSupers {
		if _, ok := requested[id]; ok {
			inBatch++
		}
	}
	if inBatch > 0 && len(activeSupers)-inBatch < 1 {
		err = ErrSuperAdminFloor
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM admins WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete admins: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk delete tx: %w", err)
	}
	return deleted, nil
}

// ToggleStatus flips is_active on the target account and returns the updated
// record. Deactivating the last active super admin is refused with
// ErrSuperAdminFloor.
func (r *AdminRepository) ToggleStatus(ctx context.Context, id string) (*models.Admin, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin toggle status tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var target struct {
		Role     models.AdminRole `db:"role"`
		IsActive bool             `db:"is_active"`
	}
	if err = tx.GetContext(ctx, &target, `SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("load admin for toggle: %w", err)
	}

	if target.Role == models.RoleSuperAdmin && target.IsActive {
		var remaining int
		remaining, err = lockActiveSuperAdmins(ctx, tx)
		if err != nil {
			return nil, err
		}
		if remaining <= 1 {
			err = ErrSuperAdminFloor
			return nil, err
		}
	}

	var admin models.Admin
	query := `UPDATE admins SET is_active = NOT is_active, updated_at = $2 WHERE id = $1 RETURNING ` + adminColumns
	if err = tx.GetContext(ctx, &admin, query, id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("toggle admin status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit toggle status tx: %w", err)
	}
	return &admin, nil
}

// Stats returns account totals grouped by activity and role.
func (r *AdminRepository) Stats(ctx context.Context) (*models.AdminStats, error) {
	const query = `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE is_active) AS active,
COUNT(*) FILTER (WHERE NOT is_active) AS inactive,
COUNT(*) FILTER (WHERE role = 'SUPER_ADMIN') AS super_admins,
COUNT(*) FILTER (WHERE role = 'ADMIN') AS admins,
COUNT(*) FILTER (WHERE role = 'EDITOR') AS editors,
COUNT(*) FILTER (WHERE role = 'VIEWER') AS viewers
FROM admins`
	var stats models.AdminStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &stats, nil
}

// lockActiveSuperAdmins takes row locks on every active super-admin account
// and returns how many there are. Locking in a stable order keeps concurrent
// invariant checks from deadlocking.
func lockActiveSuperAdmins(ctx context.Context, tx *sqlx.Tx) (int, error) {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, `SELECT id FROM admins WHERE role = $1 AND is_active = TRUE ORDER BY id FOR UPDATE`, models.RoleSuperAdmin); err != nil {
		return 0, fmt.Errorf("lock active super admins: %w", err)
	}
	return len(ids), nil
}
