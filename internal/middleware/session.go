package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brightwood-school/bwps-api/pkg/config"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
	"github.com/brightwood-school/bwps-api/pkg/response"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

// ContextAdminKey is the gin context key storing verified session claims.
const ContextAdminKey = "currentAdmin"

// AccessGate guards the back-office pages with the session cookie. Protected
// paths without a valid session redirect to the login page; the login page
// with a valid session redirects to the admin landing page. Everything else
// passes through untouched.
//
// Cookie verification fails closed: a missing, malformed, expired or
// tampered cookie is treated the same as no session at all.
func AccessGate(cfg config.GateConfig, codec *session.Codec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skip := range cfg.SkipPrefixes {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		hasSession := false
		if cookie, err := c.Cookie(cookieName); err == nil {
			_, hasSession = codec.Verify(cookie)
		}

		if isProtectedPath(path, cfg.ProtectedPrefixes) && !hasSession {
			c.Redirect(http.StatusSeeOther, cfg.LoginPath)
			c.Abort()
			return
		}

		if path == cfg.LoginPath && hasSession {
			c.Redirect(http.StatusSeeOther, cfg.LandingPath)
			c.Abort()
			return
		}

		c.Next()
	}
}

// isProtectedPath reports whether path is one of the protected prefixes or
// nested below one. "/admin" matches "/admin" and "/admin/settings" but not
// "/administrator".
func isProtectedPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// RequireSession protects JSON API routes. Unlike the page-level gate it
// answers 401 rather than redirecting, and stores the verified claims on
// the context for handlers.
func RequireSession(codec *session.Codec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(cookieName)
		if err != nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, ok := codec.Verify(cookie)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Session is invalid or has expired"))
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

// RequireRole allows only sessions whose role is in the given set. Must run
// after RequireSession.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentAdmin(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentAdmin returns the verified session claims, or nil outside a
// RequireSession route.
func CurrentAdmin(c *gin.Context) *session.Claims {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*session.Claims)
	if !ok {
		return nil
	}
	return claims
}
