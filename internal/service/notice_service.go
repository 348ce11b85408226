package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/repository"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
)

type noticeRepository interface {
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error)
	GetByID(ctx context.Context, id string) (*models.Notice, error)
	GetBySlug(ctx context.Context, slug string) (*models.Notice, error)
	Create(ctx context.Context, notice *models.Notice) error
	Update(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	AddAttachment(ctx context.Context, att *models.NoticeAttachment) error
	DeleteAttachment(ctx context.Context, noticeID, attachmentID string) error
}

// NoticeService manages the public notice board and its back-office editing.
type NoticeService struct {
	repo      noticeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs a NoticeService instance.
func NewNoticeService(repo noticeRepository, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &NoticeService{repo: repo, validator: validate, logger: logger}
}

// List returns notices matching the filter.
func (s *NoticeService) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, *models.Pagination, error) {
	notices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ListPublic returns only published, active notices for the website.
func (s *NoticeService) ListPublic(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, *models.Pagination, error) {
	published := true
	active := true
	filter.IsPublished = &published
	filter.IsActive = &active
	return s.List(ctx, filter)
}

// Get returns a notice by identifier.
func (s *NoticeService) Get(ctx context.Context, id string) (*models.Notice, error) {
	notice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch notice")
	}
	return notice, nil
}

// GetBySlug returns a published notice by its URL slug. Unpublished or
// deactivated notices are hidden from the public site.
func (s *NoticeService) GetBySlug(ctx context.Context, slug string) (*models.Notice, error) {
	notice, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch notice")
	}
	if !notice.IsPublished || !notice.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Notice not found")
	}
	return notice, nil
}

// Create publishes a new notice.
func (s *NoticeService) Create(ctx context.Context, req models.CreateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	publishDate := time.Now().UTC()
	if req.PublishDate != nil {
		publishDate = *req.PublishDate
	}
	isPublished := true
	if req.IsPublished != nil {
		isPublished = *req.IsPublished
	}
	isPinned := false
	if req.IsPinned != nil {
		isPinned = *req.IsPinned
	}

	notice := &models.Notice{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Priority:    req.Priority,
		PublishDate: publishDate,
		ExpiryDate:  req.ExpiryDate,
		EventDate:   req.EventDate,
		IsPublished: isPublished,
		IsPinned:    isPinned,
		IsActive:    true,
		Author:      req.Author,
		Slug:        req.Slug,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintNoticeSlug) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "A notice with this slug already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}
	return notice, nil
}

// Update edits an existing notice. Only non-nil fields are applied.
func (s *NoticeService) Update(ctx context.Context, id string, req models.UpdateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	notice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		notice.Title = *req.Title
	}
	if req.Description != nil {
		notice.Description = *req.Description
	}
	if req.Content != nil {
		notice.Content = req.Content
	}
	if req.Category != nil {
		notice.Category = *req.Category
	}
	if req.Priority != nil {
		notice.Priority = *req.Priority
	}
	if req.PublishDate != nil {
		notice.PublishDate = *req.PublishDate
	}
	if req.ExpiryDate != nil {
		notice.ExpiryDate = req.ExpiryDate
	}
	if req.EventDate != nil {
		notice.EventDate = req.EventDate
	}
	if req.IsPublished != nil {
		notice.IsPublished = *req.IsPublished
	}
	if req.IsPinned != nil {
		notice.IsPinned = *req.IsPinned
	}
	if req.IsActive != nil {
		notice.IsActive = *req.IsActive
	}
	if req.Slug != nil {
		notice.Slug = *req.Slug
	}

	if err := s.repo.Update(ctx, notice); err != nil {
		switch {
		case repository.IsUniqueViolation(err, repository.ConstraintNoticeSlug):
			return nil, appErrors.Clone(appErrors.ErrConflict, "A notice with this slug already exists")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Notice not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notice")
		}
	}
	return notice, nil
}

// Delete removes a notice and its attachments.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Notice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	return nil
}

// RecordView bumps the view counter for a public notice.
func (s *NoticeService) RecordView(ctx context.Context, id string) error {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Notice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record view")
	}
	return nil
}

// AddAttachment links an uploaded file to a notice.
func (s *NoticeService) AddAttachment(ctx context.Context, noticeID string, req models.AddAttachmentRequest) (*models.NoticeAttachment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attachment payload")
	}

	if _, err := s.Get(ctx, noticeID); err != nil {
		return nil, err
	}

	att := &models.NoticeAttachment{
		NoticeID: noticeID,
		FileName: req.FileName,
		FileURL:  req.FileURL,
		FileType: req.FileType,
		FileSize: req.FileSize,
	}
	if err := s.repo.AddAttachment(ctx, att); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add attachment")
	}
	return att, nil
}

// DeleteAttachment removes one attachment from a notice.
func (s *NoticeService) DeleteAttachment(ctx context.Context, noticeID, attachmentID string) error {
	if err := s.repo.DeleteAttachment(ctx, noticeID, attachmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Attachment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attachment")
	}
	return nil
}
