package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 4)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestHashAndVerifyOTP(t *testing.T) {
	hash, err := HashOTP("0423", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyOTP(hash, "0423"))
	assert.False(t, VerifyOTP(hash, "0424"))
	assert.False(t, VerifyOTP("not-a-hash", "0423"))
}

func TestNewAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 7, "rider@example.com", "customer", 7)
	require.NoError(t, err)
	assert.True(t, tok.Exp.After(time.Now().UTC().Add(6*24*time.Hour)))

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "rider@example.com", claims["email"])
	assert.Equal(t, "customer", claims["role"])
}
