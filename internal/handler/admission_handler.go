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

// AdmissionHandler exposes the public submission endpoints and the
// back-office review endpoints for admission applications.
type AdmissionHandler struct {
	admissions *service.AdmissionService
}

// NewAdmissionHandler constructs AdmissionHandler.
func NewAdmissionHandler(admissions *service.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions}
}

// Create godoc
// @Summary Submit admission application
// @Description Public endpoint. Assigns a sequential application number per academic year.
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body models.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admissions [post]
func (h *AdmissionHandler) Create(c *gin.Context) {
	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.admissions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Track godoc
// @Summary Look up application by number
// @Description Public status lookup by application number.
// @Tags Admissions
// @Produce json
// @Param number path string true "Application number"
// @Success 200 {object} response.Envelope
// @Router /admissions/track/{number} [get]
func (h *AdmissionHandler) Track(c *gin.Context) {
	app, err := h.admissions.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// List godoc
// @Summary List admission applications
// @Tags Admissions
// @Produce json
// @Param status query string false "Filter by status"
// @Param academicYear query string false "Filter by academic year"
// @Param class query string false "Filter by class applying for"
// @Param search query string false "Search by name or number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	var filter models.AdmissionFilter
	if status := c.Query("status"); status != "" {
		s := models.ApplicationStatus(status)
		filter.Status = &s
	}
	filter.AcademicYear = c.Query("academicYear")
	filter.ClassApplyingFor = c.Query("class")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	apps, pagination, err := h.admissions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Get godoc
// @Summary Get admission application
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/admissions/{id} [get]
func (h *AdmissionHandler) Get(c *gin.Context) {
	app, err := h.admissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// UpdateStatus godoc
// @Summary Review admission application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body models.UpdateApplicationStatusRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /admin/admissions/{id}/status [patch]
func (h *AdmissionHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.admissions.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims.AdminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// BulkUpdateStatus godoc
// @Summary Review several applications at once
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body models.BulkApplicationStatusRequest true "Bulk review payload"
// @Success 200 {object} response.Envelope
// @Router /admin/admissions/bulk-status [post]
func (h *AdmissionHandler) BulkUpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.BulkApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	updated, err := h.admissions.BulkUpdateStatus(c.Request.Context(), req, claims.AdminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": updated}, nil)
}

// Delete godoc
// @Summary Delete admission application
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 204 "application removed"
// @Router /admin/admissions/{id} [delete]
func (h *AdmissionHandler) Delete(c *gin.Context) {
	if err := h.admissions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Admission statistics
// @Tags Admissions
// @Produce json
// @Param academicYear query string false "Scope to academic year"
// @Success 200 {object} response.Envelope
// @Router /admin/stats/admissions [get]
func (h *AdmissionHandler) Stats(c *gin.Context) {
	stats, err := h.admissions.Stats(c.Request.Context(), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
