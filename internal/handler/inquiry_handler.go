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

// InquiryHandler exposes the public contact form and back-office triage.
type InquiryHandler struct {
	inquiries *service.InquiryService
}

// NewInquiryHandler constructs InquiryHandler.
func NewInquiryHandler(inquiries *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// Create godoc
// @Summary Submit contact inquiry
// @Description Public contact form endpoint.
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param payload body models.CreateInquiryRequest true "Inquiry payload"
// @Success 201 {object} response.Envelope
// @Router /inquiries [post]
func (h *InquiryHandler) Create(c *gin.Context) {
	var req models.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.Create(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inquiry)
}

// List godoc
// @Summary List contact inquiries
// @Tags Inquiries
// @Produce json
// @Param status query string false "Filter by status"
// @Param subject query string false "Filter by subject"
// @Param search query string false "Search by name, email or message"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/inquiries [get]
func (h *InquiryHandler) List(c *gin.Context) {
	var filter models.InquiryFilter
	if status := c.Query("status"); status != "" {
		v := models.InquiryStatus(status)
		filter.Status = &v
	}
	if subject := c.Query("subject"); subject != "" {
		v := models.InquirySubject(subject)
		filter.Subject = &v
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

	inquiries, pagination, err := h.inquiries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiries, pagination)
}

// Get godoc
// @Summary Get contact inquiry
// @Tags Inquiries
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Router /admin/inquiries/{id} [get]
func (h *InquiryHandler) Get(c *gin.Context) {
	inquiry, err := h.inquiries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}

// UpdateStatus godoc
// @Summary Update inquiry status
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param id path string true "Inquiry ID"
// @Param payload body models.UpdateInquiryStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /admin/inquiries/{id}/status [patch]
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims.AdminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}

// Delete godoc
// @Summary Delete contact inquiry
// @Tags Inquiries
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 204 "inquiry removed"
// @Router /admin/inquiries/{id} [delete]
func (h *InquiryHandler) Delete(c *gin.Context) {
	if err := h.inquiries.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
