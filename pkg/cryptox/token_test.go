package cryptox_test

import (
	"testing"

	"github.com/aussiebroadwan/fastkep/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	a, err := cryptox.GenerateSecret(32)
	require.NoError(t, err)
	require.Len(t, a, 32)

	b, err := cryptox.GenerateSecret(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestGenerateSecretRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := cryptox.GenerateSecret(size)
		require.Error(t, err)
	}
}
