package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestTokenKeeper_SetAndBearer(t *testing.T) {
	k := NewTokenKeeper()
	raw := signedToken(t, "user-1", time.Now().Add(time.Hour))

	require.NoError(t, k.Set(raw))

	bearer, err := k.Bearer()
	require.NoError(t, err)
	assert.Equal(t, raw, bearer)

	uid, ok := k.UserID()
	require.True(t, ok)
	assert.Equal(t, "user-1", uid)
}

func TestTokenKeeper_ExpiredToken(t *testing.T) {
	k := NewTokenKeeper()
	raw := signedToken(t, "user-1", time.Now().Add(-time.Minute))

	// Setting an expired token succeeds; refusing happens at use time.
	require.NoError(t, k.Set(raw))

	_, err := k.Bearer()
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenKeeper_InvalidToken(t *testing.T) {
	k := NewTokenKeeper()

	assert.ErrorIs(t, k.Set("not-a-jwt"), ErrInvalidToken)
}

func TestTokenKeeper_NoToken(t *testing.T) {
	k := NewTokenKeeper()

	_, err := k.Bearer()
	assert.ErrorIs(t, err, ErrNoToken)

	_, ok := k.UserID()
	assert.False(t, ok)
}

func TestTokenKeeper_Clear(t *testing.T) {
	k := NewTokenKeeper()
	require.NoError(t, k.Set(signedToken(t, "user-1", time.Now().Add(time.Hour))))

	k.Clear()

	_, err := k.Bearer()
	assert.ErrorIs(t, err, ErrNoToken)
}
