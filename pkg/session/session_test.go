package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecIssueAndVerify(t *testing.T) {
	codec := NewCodec("secret", time.Hour, "bwps-web")

	token, err := codec.Issue("admin-1", "admin@brightwood.edu", "Admin", "SUPER_ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "admin@brightwood.edu", claims.Email)
	assert.Equal(t, "SUPER_ADMIN", claims.Role)
}

func TestCodecVerifyFailsClosed(t *testing.T) {
	codec := NewCodec("secret", time.Hour, "bwps-web")
	token, err := codec.Issue("admin-1", "a@b.c", "A", "ADMIN")
	require.NoError(t, err)

	_, ok := codec.Verify("")
	assert.False(t, ok)

	_, ok = codec.Verify("not-a-token")
	assert.False(t, ok)

	// Tampered payload must not verify.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, ok = codec.Verify(tampered)
	assert.False(t, ok)

	// Token signed with a different secret must not verify.
	other := NewCodec("other-secret", time.Hour, "bwps-web")
	foreign, err := other.Issue("admin-1", "a@b.c", "A", "ADMIN")
	require.NoError(t, err)
	_, ok = codec.Verify(foreign)
	assert.False(t, ok)
}

func TestCodecVerifyExpired(t *testing.T) {
	codec := NewCodec("secret", time.Hour, "bwps-web")
	codec.ttl = -time.Minute
	token, err := codec.Issue("admin-1", "a@b.c", "A", "ADMIN")
	require.NoError(t, err)

	_, ok := codec.Verify(token)
	assert.False(t, ok)
}
