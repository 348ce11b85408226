package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightwood-school/bwps-api/internal/models"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(t *testing.T, admins ...models.Admin) (*AuthService, *session.Codec) {
	codec := session.NewCodec("test-secret", time.Hour, "bwps-test")
	repo := newMockAdminRepo(admins...)
	return NewAuthService(repo, codec, NewValidator(), zap.NewNop()), codec
}

func TestAuthServiceLoginIssuesVerifiableSession(t *testing.T) {
	admin := superAdmin("adm-1", "root@school.example")
	admin.PasswordHash = hashFor(t, "correct-horse")
	svc, codec := newAuthFixture(t, admin)

	token, resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "root@school.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "adm-1", resp.Admin.ID)
	require.NotNil(t, resp.Admin.LastLogin)

	claims, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Equal(t, "adm-1", claims.AdminID)
	assert.Equal(t, string(models.RoleSuperAdmin), claims.Role)
}

func TestAuthServiceLoginStampsLastLogin(t *testing.T) {
	admin := superAdmin("adm-1", "root@school.example")
	admin.PasswordHash = hashFor(t, "correct-horse")
	repo := newMockAdminRepo(admin)
	codec := session.NewCodec("test-secret", time.Hour, "bwps-test")
	svc := NewAuthService(repo, codec, NewValidator(), zap.NewNop())

	_, _, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "root@school.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	stored := repo.admins["adm-1"]
	require.NotNil(t, stored.LastLogin)
	assert.WithinDuration(t, time.Now().UTC(), *stored.LastLogin, time.Minute)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	admin := superAdmin("adm-1", "root@school.example")
	admin.PasswordHash = hashFor(t, "correct-horse")
	svc, _ := newAuthFixture(t, admin)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "root@school.example",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmailSameError(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@school.example",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	admin := superAdmin("adm-1", "root@school.example")
	admin.PasswordHash = hashFor(t, "correct-horse")
	admin.IsActive = false
	svc, _ := newAuthFixture(t, admin)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "root@school.example",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	admin := superAdmin("adm-1", "root@school.example")
	admin.PasswordHash = hashFor(t, "old-password")
	codec := session.NewCodec("test-secret", time.Hour, "bwps-test")
	repo := newMockAdminRepo(admin)
	svc := NewAuthService(repo, codec, NewValidator(), zap.NewNop())

	err := svc.ChangePassword(context.Background(), "adm-1", models.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password-1",
	})
	require.Error(t, err)

	err = svc.ChangePassword(context.Background(), "adm-1", models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password-1",
	})
	require.NoError(t, err)

	stored := repo.admins["adm-1"]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password-1")))
}
