package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/repository"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
)

type admissionRepository interface {
	CreateWithNumber(ctx context.Context, app *models.AdmissionApplication, prefix string) error
	GetByID(ctx context.Context, id string) (*models.AdmissionApplication, error)
	GetByNumber(ctx context.Context, number string) (*models.AdmissionApplication, error)
	List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, int, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks *string, reviewedBy string) (*models.AdmissionApplication, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status models.ApplicationStatus, reviewedBy string) (int64, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, academicYear string) (*models.AdmissionStats, error)
}

const admissionCachePrefix = "admissions"

// AdmissionService handles the public submission flow and the back-office
// review workflow for admission applications.
type AdmissionService struct {
	repo          admissionRepository
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
	numberPrefix  string
	numberRetries int
}

// NewAdmissionService constructs an AdmissionService instance.
func NewAdmissionService(repo admissionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, numberPrefix string, numberRetries int) *AdmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if numberPrefix == "" {
		numberPrefix = "BW"
	}
	if numberRetries < 1 {
		numberRetries = 3
	}
	return &AdmissionService{
		repo:          repo,
		cache:         cache,
		validator:     validate,
		logger:        logger,
		numberPrefix:  numberPrefix,
		numberRetries: numberRetries,
	}
}

// Create validates and stores a new application. Number allocation can lose
// a race against a concurrent submission of the same academic year; the
// insert is retried with a fresh sequence a bounded number of times before
// giving up.
func (s *AdmissionService) Create(ctx context.Context, req models.CreateApplicationRequest) (*models.AdmissionApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date_of_birth must be formatted YYYY-MM-DD")
	}

	app := s.buildApplication(req, dob)

	for attempt := 1; ; attempt++ {
		err = s.repo.CreateWithNumber(ctx, app, s.numberPrefix)
		if err == nil {
			break
		}
		if repository.IsUniqueViolation(err, repository.ConstraintAadharNumber) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "An application with this Aadhar number already exists")
		}
		if repository.IsUniqueViolation(err, repository.ConstraintApplicationNumber) && attempt < s.numberRetries {
			s.logger.Warn("application number collision, retrying",
				zap.String("academic_year", app.AcademicYear),
				zap.Int("attempt", attempt))
			app.ID = ""
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.invalidateCache()
	return app, nil
}

// Get returns an application by identifier.
func (s *AdmissionService) Get(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	return app, nil
}

// GetByNumber returns an application by its human-readable number, used by
// the public status lookup.
func (s *AdmissionService) GetByNumber(ctx context.Context, number string) (*models.AdmissionApplication, error) {
	app, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	return app, nil
}

// List returns applications matching the filter. Results are served from
// cache when enabled.
func (s *AdmissionService) List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, *models.Pagination, error) {
	type cached struct {
		Applications []models.AdmissionApplication `json:"applications"`
		Total        int                           `json:"total"`
	}

	key := s.listCacheKey(filter)
	if s.cache.Enabled() {
		var entry cached
		if hit, _ := s.cache.Get(ctx, key, &entry); hit {
			return entry.Applications, paginationFor(filter.Page, filter.PageSize, entry.Total), nil
		}
	}

	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, cached{Applications: apps, Total: total}, 0)
	}

	return apps, paginationFor(filter.Page, filter.PageSize, total), nil
}

// UpdateStatus records a review decision on one application.
func (s *AdmissionService) UpdateStatus(ctx context.Context, id string, req models.UpdateApplicationStatusRequest, reviewedBy string) (*models.AdmissionApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	app, err := s.repo.UpdateStatus(ctx, id, req.Status, req.Remarks, reviewedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}

	s.invalidateCache()
	return app, nil
}

// BulkUpdateStatus applies one decision to several applications.
func (s *AdmissionService) BulkUpdateStatus(ctx context.Context, req models.BulkApplicationStatusRequest, reviewedBy string) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk status payload")
	}

	updated, err := s.repo.BulkUpdateStatus(ctx, req.IDs, req.Status, reviewedBy)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk update applications")
	}

	s.invalidateCache()
	return updated, nil
}

// Delete removes an application permanently.
func (s *AdmissionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Application not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete application")
	}

	s.invalidateCache()
	return nil
}

// Stats returns per-status application counts.
func (s *AdmissionService) Stats(ctx context.Context, academicYear string) (*models.AdmissionStats, error) {
	if academicYear != "" && !acadYearPattern.MatchString(academicYear) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year must be formatted YYYY-YY")
	}
	stats, err := s.repo.Stats(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute admission stats")
	}
	return stats, nil
}

func (s *AdmissionService) buildApplication(req models.CreateApplicationRequest, dob time.Time) *models.AdmissionApplication {
	return &models.AdmissionApplication{
		StudentFirstName:  req.StudentFirstName,
		StudentMiddleName: req.StudentMiddleName,
		StudentLastName:   req.StudentLastName,
		DateOfBirth:       dob,
		Gender:            req.Gender,
		BloodGroup:        req.BloodGroup,
		Nationality:       req.Nationality,
		Religion:          req.Religion,
		Category:          req.Category,
		AadharNumber:      req.AadharNumber,

		ClassApplyingFor: req.ClassApplyingFor,
		PreviousSchool:   req.PreviousSchool,
		PreviousClass:    req.PreviousClass,
		AcademicYear:     req.AcademicYear,

		FatherName:       req.FatherName,
		FatherOccupation: req.FatherOccupation,
		FatherPhone:      req.FatherPhone,
		FatherEmail:      req.FatherEmail,
		MotherName:       req.MotherName,
		MotherOccupation: req.MotherOccupation,
		MotherPhone:      req.MotherPhone,
		MotherEmail:      req.MotherEmail,
		GuardianName:     req.GuardianName,
		GuardianRelation: req.GuardianRelation,
		GuardianPhone:    req.GuardianPhone,
		GuardianEmail:    req.GuardianEmail,

		CurrentAddress:   req.CurrentAddress,
		CurrentCity:      req.CurrentCity,
		CurrentState:     req.CurrentState,
		CurrentPincode:   req.CurrentPincode,
		PermanentAddress: req.PermanentAddress,
		PermanentCity:    req.PermanentCity,
		PermanentState:   req.PermanentState,
		PermanentPincode: req.PermanentPincode,

		MedicalConditions: req.MedicalConditions,
		SpecialNeeds:      req.SpecialNeeds,

		BirthCertificate:    req.BirthCertificate,
		PhotoURL:            req.PhotoURL,
		TransferCertificate: req.TransferCertificate,
		AddressProof:        req.AddressProof,

		Status: models.StatusPending,
	}
}

func (s *AdmissionService) listCacheKey(filter models.AdmissionFilter) string {
	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	return fmt.Sprintf("%s:list:%s:%s:%s:%s:%d:%d:%s:%s",
		admissionCachePrefix, status, filter.AcademicYear, filter.ClassApplyingFor,
		filter.Search, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}

func (s *AdmissionService) invalidateCache() {
	if !s.cache.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.Invalidate(ctx, admissionCachePrefix+":*"); err != nil {
			s.logger.Warn("failed to invalidate admission cache", zap.Error(err))
		}
	}()
}
