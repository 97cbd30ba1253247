package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken("test-secret", "64f000000000000000000001", "alice@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWTToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "64f000000000000000000001", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWTRejectsBadSecretAndExpired(t *testing.T) {
	token, err := GenerateJWTToken("test-secret", "id", "a@b.c", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWTToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateJWTToken("test-secret", "id", "a@b.c", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWTToken("test-secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractNameFromEmail(t *testing.T) {
	assert.Equal(t, "alice", ExtractNameFromEmail("alice@example.com"))
	assert.Equal(t, "no-at-sign", ExtractNameFromEmail("no-at-sign"))
}
