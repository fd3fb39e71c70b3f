package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "CUSTOMER", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, tok.Method)
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.EqualValues(t, 42, claims["sub"])
	require.Equal(t, "CUSTOMER", claims["role"])
	require.NotZero(t, claims["iat"])
}

func TestAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "CUSTOMER", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	require.Error(t, err)
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(30)
	require.NoError(t, err)
	// 48 random bytes -> 96 hex chars.
	require.Len(t, rt.Raw, 96)
	require.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), rt.Exp, 5*time.Second)

	// Hashing is deterministic and never echoes the raw value.
	h := HashRefreshRaw(rt.Raw)
	require.Equal(t, h, HashRefreshRaw(rt.Raw))
	require.Len(t, h, 64)
	require.NotEqual(t, rt.Raw, h)

	other, err := NewRefreshToken(30)
	require.NoError(t, err)
	require.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}

func TestNewVerifyToken(t *testing.T) {
	a, err := NewVerifyToken()
	require.NoError(t, err)
	b, err := NewVerifyToken()
	require.NoError(t, err)
	require.Len(t, a, 64)
	require.NotEqual(t, a, b)
}
