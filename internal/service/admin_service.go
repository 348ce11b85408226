package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/repository"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
)

type adminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, int, error)
	Create(ctx context.Context, admin *models.Admin) error
	Update(ctx context.Context, admin *models.Admin) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	ToggleStatus(ctx context.Context, id string) (*models.Admin, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
}

// AdminService manages back-office accounts. The repository keeps the
// active super-admin floor; this layer translates its refusal into the
// operation-specific message.
type AdminService struct {
	repo      adminRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(repo adminRepository, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AdminService{repo: repo, validator: validate, logger: logger}
}

// Register creates a new account with a bcrypt password hash.
func (s *AdminService) Register(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "An admin with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admin := &models.Admin{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "An admin with this email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}
	return admin, nil
}

// Update edits the mutable profile fields of an account.
func (s *AdminService) Update(ctx context.Context, id string, req models.UpdateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	admin, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		admin.Email = *req.Email
	}
	if req.Name != nil {
		admin.Name = *req.Name
	}
	if req.Role != nil {
		admin.Role = *req.Role
	}

	if err := s.repo.Update(ctx, admin); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "An admin with this email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update admin")
	}
	return admin, nil
}

// ResetPassword sets a new password on another account without knowing the
// old one. Reserved for super admins at the routing layer.
func (s *AdminService) ResetPassword(ctx context.Context, id string, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}

	admin, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, admin.ID, string(hash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset password")
	}
	return nil
}

// List returns accounts matching the filter.
func (s *AdminService) List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, *models.Pagination, error) {
	admins, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single account.
func (s *AdminService) Get(ctx context.Context, id string) (*models.Admin, error) {
	return s.get(ctx, id)
}

// Delete removes an account. The last active super admin cannot be deleted.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrSuperAdminFloor):
			return appErrors.Clone(appErrors.ErrInvariant, "Cannot delete the last Super Admin")
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "Admin not found")
		default:
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete admin")
		}
	}
	return nil
}

// BulkDelete removes several accounts atomically. If the batch covers every
// active super admin, nothing is deleted.
func (s *AdminService) BulkDelete(ctx context.Context, req models.BulkDeleteRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk delete payload")
	}

	deleted, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		if errors.Is(err, repository.ErrSuperAdminFloor) {
			return 0, appErrors.Clone(appErrors.ErrInvariant, "Cannot delete all Super Admins. At least one must remain.")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk delete admins")
	}
	return deleted, nil
}

// ToggleStatus flips an account between active and inactive. The last active
// super admin cannot be deactivated.
func (s *AdminService) ToggleStatus(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := s.repo.ToggleStatus(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSuperAdminFloor):
			return nil, appErrors.Clone(appErrors.ErrInvariant, "Cannot deactivate the last active Super Admin")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Admin not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle admin status")
		}
	}
	return admin, nil
}

// Stats returns account totals for the dashboard.
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute admin stats")
	}
	return stats, nil
}

func (s *AdminService) get(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}
	return admin, nil
}

func paginationFor(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
