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
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

type authAdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

// AuthService handles login, logout and self-service password changes.
type AuthService struct {
	repo      authAdminRepository
	codec     *session.Codec
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authAdminRepository, codec *session.Codec, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{repo: repo, codec: codec, validator: validate, logger: logger}
}

// Login authenticates an admin and returns the signed session token alongside
// the response payload. Unknown emails and wrong passwords produce the same
// error so the endpoint does not leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, *models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	admin, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, appErrors.ErrInvalidCredentials
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, appErrors.ErrInvalidCredentials
	}

	if !admin.IsActive {
		return "", nil, appErrors.ErrInactiveAccount
	}

	token, err := s.codec.Issue(admin.ID, admin.Email, admin.Name, string(admin.Role))
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.String("admin_id", admin.ID), zap.Error(err))
	}
	admin.LastLogin = &now

	return token, &models.LoginResponse{
		Admin:     *admin,
		ExpiresAt: now.Add(s.codec.TTL()),
	}, nil
}

// Me returns the account behind a verified session.
func (s *AuthService) Me(ctx context.Context, adminID string) (*models.Admin, error) {
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}
	return admin, nil
}

// ChangePassword rotates the caller's own password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, adminID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}

	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrUnauthorized
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, admin.ID, string(hash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	return nil
}
