package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwood-school/bwps-api/pkg/config"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

func gateRouter(t *testing.T) (*gin.Engine, *session.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec := session.NewCodec("gate-test-secret", time.Hour, "bwps-test")
	cfg := config.GateConfig{
		ProtectedPrefixes: []string{"/admin", "/admin-admission", "/notices", "/inquiries"},
		LoginPath:         "/login",
		LandingPath:       "/admin",
		SkipPrefixes:      []string{"/static/"},
	}

	r := gin.New()
	r.Use(AccessGate(cfg, codec, "session"))
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/", ok)
	r.GET("/login", ok)
	r.GET("/admin", ok)
	r.GET("/admin/settings", ok)
	r.GET("/administrator", ok)
	r.GET("/notices", ok)
	r.GET("/static/app.js", ok)
	return r, codec
}

func doGet(r *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessGateRedirectsAnonymousFromProtectedPaths(t *testing.T) {
	r, _ := gateRouter(t)

	for _, path := range []string{"/admin", "/admin/settings", "/notices"} {
		w := doGet(r, path, "")
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestAccessGateAllowsSessionOnProtectedPaths(t *testing.T) {
	r, codec := gateRouter(t)
	token, err := codec.Issue("adm-1", "root@school.example", "Root", "SUPER_ADMIN")
	require.NoError(t, err)

	w := doGet(r, "/admin/settings", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGateLoginBouncesAuthenticated(t *testing.T) {
	r, codec := gateRouter(t)
	token, err := codec.Issue("adm-1", "root@school.example", "Root", "SUPER_ADMIN")
	require.NoError(t, err)

	w := doGet(r, "/login", token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	w = doGet(r, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGatePrefixBoundary(t *testing.T) {
	r, _ := gateRouter(t)

	// "/administrator" shares the string prefix but is not under "/admin".
	w := doGet(r, "/administrator", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGateIgnoresUnlistedAndSkippedPaths(t *testing.T) {
	r, _ := gateRouter(t)

	assert.Equal(t, http.StatusOK, doGet(r, "/", "").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/static/app.js", "").Code)
}

func TestAccessGateFailsClosedOnBadCookies(t *testing.T) {
	r, _ := gateRouter(t)

	w := doGet(r, "/admin", "garbage-token")
	assert.Equal(t, http.StatusSeeOther, w.Code)

	foreign := session.NewCodec("other-secret", time.Hour, "bwps-test")
	token, err := foreign.Issue("adm-1", "root@school.example", "Root", "SUPER_ADMIN")
	require.NoError(t, err)
	w = doGet(r, "/admin", token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestRequireSessionAnswers401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	codec := session.NewCodec("gate-test-secret", time.Hour, "bwps-test")

	r := gin.New()
	r.GET("/api/v1/admins", RequireSession(codec, "session"), func(c *gin.Context) {
		claims := CurrentAdmin(c)
		require.NotNil(t, claims)
		c.String(http.StatusOK, claims.AdminID)
	})

	w := doGet(r, "/api/v1/admins", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	token, err := codec.Issue("adm-1", "root@school.example", "Root", "SUPER_ADMIN")
	require.NoError(t, err)
	w = doGet(r, "/api/v1/admins", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "adm-1", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	codec := session.NewCodec("gate-test-secret", time.Hour, "bwps-test")

	r := gin.New()
	r.DELETE("/api/v1/admins/:id",
		RequireSession(codec, "session"),
		RequireRole("SUPER_ADMIN"),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)

	editor, err := codec.Issue("adm-2", "editor@school.example", "Editor", "EDITOR")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admins/adm-9", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: editor})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	super, err := codec.Issue("adm-1", "root@school.example", "Root", "SUPER_ADMIN")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admins/adm-9", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: super})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
