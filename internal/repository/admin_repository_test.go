package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/brightwood-school/bwps-api/internal/models"
)

func newAdminRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAdminRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "is_active", "last_login", "created_at", "updated_at"}).
		AddRow("adm-1", "root@school.example", "$2a$10$hash", "Root", "SUPER_ADMIN", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash")).
		WithArgs("root@school.example").
		WillReturnRows(rows)

	admin, err := repo.FindByEmail(context.Background(), "root@school.example")
	require.NoError(t, err)
	require.Equal(t, "adm-1", admin.ID)
	require.Equal(t, models.RoleSuperAdmin, admin.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryDeleteLastSuperAdminRefused(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE")).
		WithArgs("adm-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("SUPER_ADMIN", true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins WHERE role = $1 AND is_active = TRUE ORDER BY id FOR UPDATE")).
		WithArgs(models.RoleSuperAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("adm-1"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "adm-1")
	require.ErrorIs(t, err, ErrSuperAdminFloor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryDeleteSuperAdminWithBackup(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE")).
		WithArgs("adm-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("SUPER_ADMIN", true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins WHERE role = $1 AND is_active = TRUE ORDER BY id FOR UPDATE")).
		WithArgs(models.RoleSuperAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("adm-1").AddRow("adm-2"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).
		WithArgs("adm-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "adm-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryDeleteNonSuperSkipsFloorCheck(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE")).
		WithArgs("adm-3").
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("EDITOR", true))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).
		WithArgs("adm-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "adm-3"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdminRepositoryBulkDeleteRefusedWhenAllSupersInBatch(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins WHERE role = $1 AND is_active = TRUE ORDER BY id FOR UPDATE")).
		WithArgs(models.RoleSuperAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("adm-1").AddRow("adm-2"))
	mock.ExpectRollback()

	deleted, err := repo.BulkDelete(context.Background(), []string{"adm-1", "adm-2", "adm-9"})
	require.ErrorIs(t, err, ErrSuperAdminFloor)
	require.Zero(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryBulkDeleteLeavesOneSuper(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins WHERE role = $1 AND is_active = TRUE ORDER BY id FOR UPDATE")).
		WithArgs(models.RoleSuperAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("adm-1").AddRow("adm-2"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = ANY($1)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	deleted, err := repo.BulkDelete(context.Background(), []string{"adm-2", "adm-9"})
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryBulkDeleteEmptyBatch(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	deleted, err := repo.BulkDelete(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryToggleStatusLastSuperRefused(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE")).
		WithArgs("adm-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("SUPER_ADMIN", true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins WHERE role = $1 AND is_active = TRUE ORDER BY id FOR UPDATE")).
		WithArgs(models.RoleSuperAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("adm-1"))
	mock.ExpectRollback()

	admin, err := repo.ToggleStatus(context.Background(), "adm-1")
	require.ErrorIs(t, err, ErrSuperAdminFloor)
	require.Nil(t, admin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryToggleStatusReactivate(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, is_active FROM admins WHERE id = $1 FOR UPDATE")).
		WithArgs("adm-2").
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("SUPER_ADMIN", false))
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "is_active", "last_login", "created_at", "updated_at"}).
		AddRow("adm-2", "second@school.example", "$2a$10$hash", "Second", "SUPER_ADMIN", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE admins SET is_active = NOT is_active")).
		WithArgs("adm-2", sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectCommit()

	admin, err := repo.ToggleStatus(context.Background(), "adm-2")
	require.NoError(t, err)
	require.True(t, admin.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAdminRepoMock(t)
	defer cleanup()

	repo := NewAdminRepository(db)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "is_active", "last_login", "created_at", "updated_at"}).
		AddRow("adm-1", "root@school.example", "$2a$10$hash", "Root", "SUPER_ADMIN", true, nil, time.Now(), time.Now())
	role := models.RoleSuperAdmin
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash")).
		WithArgs(role, active).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins")).
		WithArgs(role, active).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	admins, total, err := repo.List(context.Background(), models.AdminFilter{Role: &role, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
