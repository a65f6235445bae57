package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconsult/consultation-service/internal/domain"
)

var testIdentity = domain.Identity{ID: "5b1d2c4e-8a55-4a43-9f7e-1f2b3c4d5e6f", Role: domain.RoleDoctor, Name: "A", Email: "a@x.com"}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 24*time.Hour)

	token, exp, err := tm.GenerateToken(testIdentity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims, err := tm.Verify("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, claims.Identity())
	assert.Equal(t, testIdentity.ID, claims.Subject)
	assert.False(t, claims.ExpiresAt.Time.After(claims.IssuedAt.Time.Add(tm.TTL())))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", 24*time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	token, _, err := tm.GenerateToken(testIdentity)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify("Bearer " + token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMissingToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	for _, header := range []string{"", "Bearer", "Bearer ", "   "} {
		_, err := tm.Verify(header)
		assert.ErrorIs(t, err, ErrMissingToken, "header %q", header)
	}
}

func TestVerifyInvalidToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	foreign, _, err := other.GenerateToken(testIdentity)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":   testIdentity.ID,
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "x", "role": "admin"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, header := range map[string]string{
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + foreign,
		"alg none":     "Bearer " + unsigned,
		"no expiry":    "Bearer " + noExpiry,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(header)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("p", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "p", hash)
	assert.NoError(t, ComparePassword(hash, "p"))
	assert.Error(t, ComparePassword(hash, "q"))
}
