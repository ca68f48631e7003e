package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() JWTService {
	return NewJWTService(JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "29001011234567", "doctor")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "29001011234567", claims.NationalID)
	assert.Equal(t, "doctor", claims.Role)
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	refresh, err := svc.GenerateRefreshToken(userID, "29001011234567", "patient")
	require.NoError(t, err)

	// A refresh token must not validate as an access token.
	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(uuid.New(), "29001011234567", "patient")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)

	other := NewJWTService(JWTConfig{Secret: "different", RefreshSecret: "different"})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewJWTService(JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        -time.Minute,
		RefreshExpiry: time.Hour,
	})

	token, err := svc.GenerateAccessToken(uuid.New(), "29001011234567", "patient")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
