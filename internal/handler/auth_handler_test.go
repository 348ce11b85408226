package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/service"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

type authRepoMock struct {
	admins map[string]*models.Admin
}

func (m *authRepoMock) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	for _, admin := range m.admins {
		if admin.Email == email {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *authRepoMock) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if admin, ok := m.admins[id]; ok {
		copied := *admin
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *authRepoMock) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if admin, ok := m.admins[id]; ok {
		admin.LastLogin = &ts
	}
	return nil
}

func (m *authRepoMock) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if admin, ok := m.admins[id]; ok {
		admin.PasswordHash = passwordHash
		admin.UpdatedAt = updatedAt
	}
	return nil
}

func newAuthHandlerFixture(t *testing.T) (*AuthHandler, *session.Codec) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &authRepoMock{admins: map[string]*models.Admin{
		"adm-1": {
			ID:           "adm-1",
			Name:         "Principal",
			Email:        "principal@school.test",
			PasswordHash: string(hash),
			Role:         models.RoleSuperAdmin,
			IsActive:     true,
		},
	}}
	codec := session.NewCodec("handler-test-secret", time.Hour, "bwps-api")
	svc := service.NewAuthService(repo, codec, service.NewValidator(), zap.NewNop())
	return NewAuthHandler(svc, "session", 3600, false), codec
}

func postJSON(t *testing.T, payload interface{}, target string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestAuthHandlerLoginSetsSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, codec := newAuthHandlerFixture(t)

	w, c := postJSON(t, models.LoginRequest{
		Email:    "principal@school.test",
		Password: "correct-horse",
	}, "/auth/login")

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	claims, ok := codec.Verify(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, "adm-1", claims.AdminID)
	assert.Equal(t, "SUPER_ADMIN", claims.Role)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthHandlerFixture(t)

	w, c := postJSON(t, models.LoginRequest{
		Email:    "principal@school.test",
		Password: "wrong",
	}, "/auth/login")

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthHandlerLoginMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthHandlerFixture(t)

	w, c := postJSON(t, map[string]string{"email": "not-an-email"}, "/auth/login")

	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthHandlerFixture(t)

	r := gin.New()
	r.POST("/auth/logout", handler.Logout)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}
