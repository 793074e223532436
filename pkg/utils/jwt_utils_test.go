package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT(42, "ada", "customer", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "customer", claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateJWT(42, "ada", "customer", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}
