package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/service"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
	"github.com/brightwood-school/bwps-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service. Sessions travel in
// an HttpOnly cookie rather than a bearer header.
type AuthHandler struct {
	service      *service.AuthService
	cookieName   string
	cookieMaxAge int
	secureCookie bool
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookieName string, cookieMaxAge int, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		service:      svc,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

// Login godoc
// @Summary Authenticate admin
// @Description Authenticate by email and password, setting the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	token, res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, h.cookieMaxAge, "/", "", h.secureCookie, true)
	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary End the current session
// @Tags Authentication
// @Produce json
// @Success 204 "session cleared"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	response.NoContent(c)
}

// Me godoc
// @Summary Current session profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	admin, err := h.service.Me(c.Request.Context(), claims.AdminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Password payload"
// @Success 204 "password updated"
// @Failure 401 {object} response.Envelope
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid password payload"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), claims.AdminID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
