package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, SessionTokenBytes)

		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	a, err := GenerateRandomPassword()
	require.NoError(t, err)
	b, err := GenerateRandomPassword()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(a), 72, "must fit in bcrypt input")
}
