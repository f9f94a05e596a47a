package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtract_Success(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("super-secret")
	userID := "6f1d2f3a-9b53-4f7e-8a10-b4f1c2d3e4f5"

	tok, err := svc.GenerateToken(userID)
	require.NoError(t, err)

	got, err := svc.ExtractUserID(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestExtractUserID_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewJWTService("right-secret").GenerateToken("u1")
	require.NoError(t, err)

	_, err = NewJWTService("wrong-secret").ExtractUserID(tok)
	assert.Error(t, err)
}

func TestExtractUserID_Expired(t *testing.T) {
	t.Parallel()

	secret := "secret"
	claims := jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-1 * time.Minute).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewJWTService(secret).ExtractUserID(tok)
	assert.Error(t, err)
}

func TestExtractUserID_MissingUserID(t *testing.T) {
	t.Parallel()

	secret := "secret"
	claims := jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewJWTService(secret).ExtractUserID(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
