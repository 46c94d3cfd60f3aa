package service

import (
	"errors"
	"testing"
	"time"

	apperrors "makerspace/pkg/errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, err := svc.GenerateToken(42)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWT_Expired(t *testing.T) {
	svc := NewJWTService("secret", time.Hour).(*jwtService)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateToken(42)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
}

func TestJWT_WrongSecretOrMethod(t *testing.T) {
	token, err := NewJWTService("other", time.Hour).GenerateToken(42)
	require.NoError(t, err)
	_, err = NewJWTService("secret", time.Hour).ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaim{UserID: 42}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewJWTService("secret", time.Hour).ValidateToken(unsigned)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}
