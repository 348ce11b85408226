package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/repository"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
)

type mockAdminRepo struct {
	admins map[string]models.Admin
}

func newMockAdminRepo(admins ...models.Admin) *mockAdminRepo {
	m := &mockAdminRepo{admins: make(map[string]models.Admin)}
	for _, a := range admins {
		m.admins[a.ID] = a
	}
	return m
}

func (m *mockAdminRepo) activeSupers() []string {
	var out []string
	for id, a := range m.admins {
		if a.Role == models.RoleSuperAdmin && a.IsActive {
			out = append(out, id)
		}
	}
	return out
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			admin := a
			return &admin, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if a, ok := m.admins[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminRepo) List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, int, error) {
	var out []models.Admin
	for _, a := range m.admins {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = "adm-new"
	}
	m.admins[admin.ID] = *admin
	return nil
}

func (m *mockAdminRepo) Update(ctx context.Context, admin *models.Admin) error {
	if _, ok := m.admins[admin.ID]; !ok {
		return sql.ErrNoRows
	}
	m.admins[admin.ID] = *admin
	return nil
}

func (m *mockAdminRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	a, ok := m.admins[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.LastLogin = &ts
	m.admins[id] = a
	return nil
}

func (m *mockAdminRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	a, ok := m.admins[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.PasswordHash = passwordHash
	m.admins[id] = a
	return nil
}

func (m *mockAdminRepo) Delete(ctx context.Context, id string) error {
	target, ok := m.admins[id]
	if !ok {
		return sql.ErrNoRows
	}
	if target.Role == models.RoleSuperAdmin && target.IsActive && len(m.activeSupers()) <= 1 {
		return repository.ErrSuperAdminFloor
	}
	delete(m.admins, id)
	return nil
}

func (m *mockAdminRepo) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}
	supers := m.activeSupers()
	inBatch := 0
	for _, id := range supers {
		if _, ok := requested[id]; ok {
			inBatch++
		}
	}
	if inBatch > 0 && len(supers)-inBatch < 1 {
		return 0, repository.ErrSuperAdminFloor
	}
	var deleted int64
	for _, id := range ids {
		if _, ok := m.admins[id]; ok {
			delete(m.admins, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockAdminRepo) ToggleStatus(ctx context.Context, id string) (*models.Admin, error) {
	a, ok := m.admins[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if a.Role == models.RoleSuperAdmin && a.IsActive && len(m.activeSupers()) <= 1 {
		return nil, repository.ErrSuperAdminFloor
	}
	a.IsActive = !a.IsActive
	m.admins[id] = a
	return &a, nil
}

func (m *mockAdminRepo) Stats(ctx context.Context) (*models.AdminStats, error) {
	return &models.AdminStats{Total: len(m.admins)}, nil
}

func superAdmin(id, email string) models.Admin {
	return models.Admin{ID: id, Email: email, Name: "Super", Role: models.RoleSuperAdmin, IsActive: true}
}

func TestAdminServiceDeleteLastSuperAdmin(t *testing.T) {
	repo := newMockAdminRepo(superAdmin("adm-1", "root@school.example"))
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	err := svc.Delete(context.Background(), "adm-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvariant.Code, appErr.Code)
	assert.Equal(t, "Cannot delete the last Super Admin", appErr.Message)
	assert.Len(t, repo.admins, 1)
}

func TestAdminServiceDeleteSuperAdminWithBackup(t *testing.T) {
	repo := newMockAdminRepo(
		superAdmin("adm-1", "root@school.example"),
		superAdmin("adm-2", "second@school.example"),
	)
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "adm-1"))
	assert.Len(t, repo.admins, 1)
}

func TestAdminServiceBulkDeleteAllSupersRefused(t *testing.T) {
	repo := newMockAdminRepo(
		superAdmin("11111111-1111-4111-8111-111111111111", "root@school.example"),
		superAdmin("22222222-2222-4222-8222-222222222222", "second@school.example"),
	)
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	_, err := svc.BulkDelete(context.Background(), models.BulkDeleteRequest{IDs: []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
	}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvariant.Code, appErr.Code)
	assert.Equal(t, "Cannot delete all Super Admins. At least one must remain.", appErr.Message)
	assert.Len(t, repo.admins, 2)
}

func TestAdminServiceBulkDeleteKeepsOneSuper(t *testing.T) {
	repo := newMockAdminRepo(
		superAdmin("11111111-1111-4111-8111-111111111111", "root@school.example"),
		superAdmin("22222222-2222-4222-8222-222222222222", "second@school.example"),
	)
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	deleted, err := svc.BulkDelete(context.Background(), models.BulkDeleteRequest{IDs: []string{
		"22222222-2222-4222-8222-222222222222",
	}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.Len(t, repo.admins, 1)
}

func TestAdminServiceToggleStatusLastSuperRefused(t *testing.T) {
	repo := newMockAdminRepo(superAdmin("adm-1", "root@school.example"))
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	_, err := svc.ToggleStatus(context.Background(), "adm-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvariant.Code, appErr.Code)
	assert.Equal(t, "Cannot deactivate the last active Super Admin", appErr.Message)
}

func TestAdminServiceToggleStatusInactiveSuperReactivates(t *testing.T) {
	inactive := superAdmin("adm-2", "second@school.example")
	inactive.IsActive = false
	repo := newMockAdminRepo(superAdmin("adm-1", "root@school.example"), inactive)
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	admin, err := svc.ToggleStatus(context.Background(), "adm-2")
	require.NoError(t, err)
	assert.True(t, admin.IsActive)
}

func TestAdminServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockAdminRepo(superAdmin("adm-1", "root@school.example"))
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Register(context.Background(), models.CreateAdminRequest{
		Email:    "root@school.example",
		Password: "s3cret-pass",
		Name:     "Duplicate",
		Role:     models.RoleEditor,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAdminServiceRegisterHashesPassword(t *testing.T) {
	repo := newMockAdminRepo()
	svc := NewAdminService(repo, NewValidator(), zap.NewNop())

	admin, err := svc.Register(context.Background(), models.CreateAdminRequest{
		Email:    "editor@school.example",
		Password: "s3cret-pass",
		Name:     "Editor",
		Role:     models.RoleEditor,
	})
	require.NoError(t, err)
	assert.True(t, admin.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret-pass")))
}
