package cryptox_test

import (
	"encoding/hex"
	"testing"

	"github.com/blightstone/blightstone/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("returns hex of the requested size", func(t *testing.T) {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)
		require.Len(t, token, 64)

		raw, err := hex.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, cryptox.TokenSize256)
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := cryptox.GenerateToken(0)
		require.Error(t, err)

		_, err = cryptox.GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			token := cryptox.MustGenerateToken(cryptox.TokenSize256)
			_, dup := seen[token]
			require.False(t, dup)
			seen[token] = struct{}{}
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	a := cryptox.FingerprintToken("token-a")
	b := cryptox.FingerprintToken("token-b")

	require.NotEqual(t, a, b)
	require.Equal(t, a, cryptox.FingerprintToken("token-a"))
	require.NotEqual(t, "token-a", a)
}
