package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightwood-school/bwps-api/internal/models"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
)

type inquiryRepository interface {
	Create(ctx context.Context, inquiry *models.ContactInquiry) error
	GetByID(ctx context.Context, id string) (*models.ContactInquiry, error)
	List(ctx context.Context, filter models.InquiryFilter) ([]models.ContactInquiry, int, error)
	UpdateStatus(ctx context.Context, id string, status models.InquiryStatus, response *string, respondedBy string) (*models.ContactInquiry, error)
	Delete(ctx context.Context, id string) error
}

// InquiryService handles the public contact form and its back-office triage.
type InquiryService struct {
	repo      inquiryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInquiryService constructs an InquiryService instance.
func NewInquiryService(repo inquiryRepository, validate *validator.Validate, logger *zap.Logger) *InquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &InquiryService{repo: repo, validator: validate, logger: logger}
}

// Create stores a contact form submission. The caller IP is recorded for
// abuse follow-up.
func (s *InquiryService) Create(ctx context.Context, req models.CreateInquiryRequest, clientIP string) (*models.ContactInquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inquiry payload")
	}

	inquiry := &models.ContactInquiry{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Subject:  req.Subject,
		Message:  req.Message,
		Status:   models.InquiryNew,
	}
	if clientIP != "" {
		inquiry.IPAddress = &clientIP
	}

	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create inquiry")
	}
	return inquiry, nil
}

// Get returns an inquiry by identifier.
func (s *InquiryService) Get(ctx context.Context, id string) (*models.ContactInquiry, error) {
	inquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch inquiry")
	}
	return inquiry, nil
}

// List returns inquiries matching the filter.
func (s *InquiryService) List(ctx context.Context, filter models.InquiryFilter) ([]models.ContactInquiry, *models.Pagination, error) {
	inquiries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inquiries")
	}
	return inquiries, paginationFor(filter.Page, filter.PageSize, total), nil
}

// UpdateStatus moves an inquiry through its handling states; a response text
// is stamped with the responder and time.
func (s *InquiryService) UpdateStatus(ctx context.Context, id string, req models.UpdateInquiryStatusRequest, respondedBy string) (*models.ContactInquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	inquiry, err := s.repo.UpdateStatus(ctx, id, req.Status, req.Response, respondedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update inquiry")
	}
	return inquiry, nil
}

// Delete removes an inquiry permanently.
func (s *InquiryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Inquiry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete inquiry")
	}
	return nil
}
