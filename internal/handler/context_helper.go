package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/brightwood-school/bwps-api/internal/middleware"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

func claimsFromContext(c *gin.Context) *session.Claims {
	return middleware.CurrentAdmin(c)
}
