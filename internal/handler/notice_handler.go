package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/service"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
	"github.com/brightwood-school/bwps-api/pkg/response"
)

// NoticeHandler exposes the public notice board and back-office editing.
type NoticeHandler struct {
	notices *service.NoticeService
}

// NewNoticeHandler constructs NoticeHandler.
func NewNoticeHandler(notices *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

func noticeFilterFromQuery(c *gin.Context) models.NoticeFilter {
	var filter models.NoticeFilter
	if category := c.Query("category"); category != "" {
		v := models.NoticeCategory(category)
		filter.Category = &v
	}
	if priority := c.Query("priority"); priority != "" {
		v := models.NoticePriority(priority)
		filter.Priority = &v
	}
	if pinned := c.Query("pinned"); pinned != "" {
		v := pinned == "true"
		filter.IsPinned = &v
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}

// ListPublic godoc
// @Summary List published notices
// @Description Public board. Only published, active notices appear.
// @Tags Notices
// @Produce json
// @Param category query string false "Filter by category"
// @Param priority query string false "Filter by priority"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) ListPublic(c *gin.Context) {
	notices, pagination, err := h.notices.ListPublic(c.Request.Context(), noticeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, pagination)
}

// GetBySlug godoc
// @Summary Get published notice by slug
// @Tags Notices
// @Produce json
// @Param slug path string true "Notice slug"
// @Success 200 {object} response.Envelope
// @Router /notices/slug/{slug} [get]
func (h *NoticeHandler) GetBySlug(c *gin.Context) {
	notice, err := h.notices.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// RecordView godoc
// @Summary Count a notice view
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 204 "view counted"
// @Router /notices/{id}/views [post]
func (h *NoticeHandler) RecordView(c *gin.Context) {
	if err := h.notices.RecordView(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List all notices
// @Description Back-office listing including drafts and deactivated notices.
// @Tags Notices
// @Produce json
// @Param category query string false "Filter by category"
// @Param published query bool false "Filter by published state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	filter := noticeFilterFromQuery(c)
	if published := c.Query("published"); published != "" {
		v := published == "true"
		filter.IsPublished = &v
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.IsActive = &v
	}

	notices, pagination, err := h.notices.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, pagination)
}

// Get godoc
// @Summary Get notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 200 {object} response.Envelope
// @Router /admin/notices/{id} [get]
func (h *NoticeHandler) Get(c *gin.Context) {
	notice, err := h.notices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// Create godoc
// @Summary Create notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body models.CreateNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	var req models.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	notice, err := h.notices.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// Update godoc
// @Summary Update notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body models.UpdateNoticeRequest true "Notice payload"
// @Success 200 {object} response.Envelope
// @Router /admin/notices/{id} [put]
func (h *NoticeHandler) Update(c *gin.Context) {
	var req models.UpdateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	notice, err := h.notices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// Delete godoc
// @Summary Delete notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 204 "notice removed"
// @Router /admin/notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.notices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddAttachment godoc
// @Summary Attach file to notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body models.AddAttachmentRequest true "Attachment payload"
// @Success 201 {object} response.Envelope
// @Router /admin/notices/{id}/attachments [post]
func (h *NoticeHandler) AddAttachment(c *gin.Context) {
	var req models.AddAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	att, err := h.notices.AddAttachment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, att)
}

// DeleteAttachment godoc
// @Summary Remove attachment from notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 204 "attachment removed"
// @Router /admin/notices/{id}/attachments/{attachmentId} [delete]
func (h *NoticeHandler) DeleteAttachment(c *gin.Context) {
	if err := h.notices.DeleteAttachment(c.Request.Context(), c.Param("id"), c.Param("attachmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
