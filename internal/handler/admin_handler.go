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

// AdminHandler exposes account management endpoints.
type AdminHandler struct {
	admins *service.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// List godoc
// @Summary List admin accounts
// @Tags Admins
// @Produce json
// @Param role query string false "Filter by role"
// @Param active query bool false "Filter by active state"
// @Param search query string false "Search by email or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	var filter models.AdminFilter
	if role := c.Query("role"); role != "" {
		r := models.AdminRole(role)
		filter.Role = &r
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.IsActive = &v
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

	admins, pagination, err := h.admins.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, pagination)
}

// Get godoc
// @Summary Get admin account
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Router /admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	admin, err := h.admins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// Create godoc
// @Summary Register admin account
// @Tags Admins
// @Accept json
// @Produce json
// @Param payload body models.CreateAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req models.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	admin, err := h.admins.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// Update godoc
// @Summary Update admin account
// @Tags Admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body models.UpdateAdminRequest true "Admin payload"
// @Success 200 {object} response.Envelope
// @Router /admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	var req models.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	admin, err := h.admins.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// Delete godoc
// @Summary Delete admin account
// @Description Removes an account. The last active Super Admin cannot be deleted.
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 204 "account removed"
// @Failure 409 {object} response.Envelope
// @Router /admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.admins.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkDelete godoc
// @Summary Delete several admin accounts
// @Description Atomic batch removal. Refused if it would remove every active Super Admin.
// @Tags Admins
// @Accept json
// @Produce json
// @Param payload body models.BulkDeleteRequest true "Account IDs"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admins [delete]
func (h *AdminHandler) BulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	deleted, err := h.admins.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// ToggleStatus godoc
// @Summary Toggle admin active state
// @Description Flips is_active. The last active Super Admin cannot be deactivated.
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admins/{id}/toggle-status [patch]
func (h *AdminHandler) ToggleStatus(c *gin.Context) {
	admin, err := h.admins.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// ResetPassword godoc
// @Summary Reset another account's password
// @Tags Admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body models.ResetPasswordRequest true "Password payload"
// @Success 204 "password reset"
// @Router /admins/{id}/reset-password [post]
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.admins.ResetPassword(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Admin account statistics
// @Tags Admins
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats/admins [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admins.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
