package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/fastkep/pkg/cryptox"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeyManager(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	tests := []struct {
		name          string
		opts          jwtx.KeyManagerOptions
		wantAlg       string
		wantEphemeral bool
	}{
		{"default is ephemeral HS256", jwtx.KeyManagerOptions{}, jwtx.AlgorithmHS256, true},
		{"HS256 with secret", jwtx.KeyManagerOptions{Algorithm: "hs256", Secret: testSecret}, jwtx.AlgorithmHS256, false},
		{"ephemeral EdDSA", jwtx.KeyManagerOptions{Algorithm: "EdDSA"}, jwtx.AlgorithmEdDSA, true},
		{"EdDSA with key", jwtx.KeyManagerOptions{Algorithm: "EdDSA", PrivateKeyPEM: pemKey}, jwtx.AlgorithmEdDSA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Issuer = exampleIssuer

			km, err := jwtx.NewKeyManager(tt.opts)
			require.NoError(t, err)
			require.Equal(t, tt.wantAlg, km.Algorithm())
			require.Equal(t, tt.wantEphemeral, km.Ephemeral())
			require.NotEmpty(t, km.Signer.KID())

			token, err := km.Signer.Sign(jwtx.NewClaims("user-1", "access", time.Hour, exampleIssuer, time.Now()))
			require.NoError(t, err)

			c, err := km.Verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "user-1", c.Subject)
		})
	}
}

func TestKeyManagerStableKID(t *testing.T) {
	a, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, Secret: testSecret})
	require.NoError(t, err)
	b, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, Secret: testSecret})
	require.NoError(t, err)

	require.Equal(t, a.Signer.KID(), b.Signer.KID())

	token, err := a.Signer.Sign(jwtx.NewClaims("user-1", "access", time.Hour, exampleIssuer, time.Now()))
	require.NoError(t, err)
	_, err = b.Verifier.Verify(token)
	require.NoError(t, err)
}

func TestKeyManagerErrors(t *testing.T) {
	_, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err, "issuer required")

	_, err = jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, Algorithm: "RS256"})
	require.Error(t, err)

	_, err = jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, Secret: []byte("short")})
	require.Error(t, err)
}
