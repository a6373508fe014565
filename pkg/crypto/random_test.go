package crypto

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomBytes(t *testing.T) {
	b1, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.Len(t, b1, 32)

	b2, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.NotEqual(t, b1, b2)
}

func TestGenerateRandomBytes_Zero(t *testing.T) {
	b, err := GenerateRandomBytes(0)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestGenerateRandomString(t *testing.T) {
	for _, n := range []int{1, 6, 16, 32, 64} {
		s, err := GenerateRandomString(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		assert.Regexp(t, `^[A-Za-z0-9_-]+$`, s)
	}
}

func TestGenerateToken(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9]{64}$`)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		tok, err := GenerateToken(64)
		require.NoError(t, err)
		assert.True(t, pattern.MatchString(tok), "unexpected token %q", tok)
		assert.False(t, seen[tok], "duplicate token")
		seen[tok] = true
	}
}
