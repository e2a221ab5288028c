package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseJWT(t *testing.T) {
	token, err := SignJWT("test-secret", "user-123", "freelancer", 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "freelancer", claims.Role)
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	token, err := SignJWT("secret-a", "user-123", "client", 60)
	require.NoError(t, err)

	_, err = ParseJWT("secret-b", token)
	assert.Error(t, err)
}

func TestParseJWTRejectsExpiredToken(t *testing.T) {
	token, err := SignJWT("test-secret", "user-123", "client", -1)
	require.NoError(t, err)

	_, err = ParseJWT("test-secret", token)
	assert.Error(t, err)
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	_, err := ParseJWT("test-secret", "not.a.token")
	assert.Error(t, err)
}
