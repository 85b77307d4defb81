package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granth/internal/platform/identity"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestResolveFromToken(t *testing.T) {
	t.Parallel()
	token := sign(t, "s3cret", jwt.MapClaims{
		"sub":   "user-42",
		"email": "reader@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	user, err := identity.Resolve("ignored", token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user-42", user.ID)
	assert.Equal(t, "reader@example.com", user.Email)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	t.Parallel()
	expired := sign(t, "s3cret", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err := identity.Resolve("", expired, "s3cret")
	assert.Error(t, err)

	wrongKey := sign(t, "other", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()})
	_, err = identity.Resolve("", wrongKey, "s3cret")
	assert.Error(t, err)

	noSubject := sign(t, "s3cret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	_, err = identity.Resolve("", noSubject, "s3cret")
	assert.Error(t, err)

	_, err = identity.Resolve("", noSubject, "")
	assert.Error(t, err)
}

func TestResolveFallsBackToUserID(t *testing.T) {
	t.Parallel()
	user, err := identity.Resolve(" local ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "local", user.ID)

	_, err = identity.Resolve("", "", "")
	assert.ErrorIs(t, err, identity.ErrMissingUser)
}
