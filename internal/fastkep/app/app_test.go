package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/revocation"
	"github.com/aussiebroadwan/fastkep/pkg/fastkepsdk"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.DatabaseFile = filepath.Join(dir, "fastkep.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	return cfg
}

func TestApplicationEndToEnd(t *testing.T) {
	for _, tc := range []struct {
		name    string
		backend string
		alg     string
	}{
		{"database revocations with HS256", revocation.BackendDatabase, jwtx.AlgorithmHS256},
		{"memory revocations with EdDSA", revocation.BackendMemory, jwtx.AlgorithmEdDSA},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.RevocationBackend = tc.backend
			cfg.SigningAlg = tc.alg
			if tc.alg == jwtx.AlgorithmEdDSA {
				cfg.SigningKeyFile = filepath.Join(t.TempDir(), "signing.pem")
			}

			application, err := New(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = application.closeStores() })

			srv := httptest.NewServer(application.Handler())
			t.Cleanup(srv.Close)

			ctx := context.Background()
			client := fastkepsdk.NewClient(srv.URL)

			reg, err := client.Register(ctx, fastkepsdk.RegisterRequest{
				Email:     "app@example.gr",
				Password:  "Abcdef1!",
				FirstName: "Νίκος",
				LastName:  "Κωνσταντίνου",
			})
			require.NoError(t, err)

			session := client.NewSessionFromTokens(reg.AccessToken, reg.RefreshToken, reg.ExpiresIn)
			require.NoError(t, session.Logout(ctx))

			_, err = client.NewSessionFromTokens(reg.AccessToken, reg.RefreshToken, reg.ExpiresIn).Me(ctx)
			require.ErrorIs(t, err, fastkepsdk.ErrInvalidToken)

			ready, err := client.GetReadiness(ctx)
			require.NoError(t, err)
			require.Equal(t, "ok", ready.Status)
		})
	}
}

func TestNewRejectsMissingConverter(t *testing.T) {
	cfg := testConfig(t)
	cfg.DocumentPDFConverter = "no-such-wkhtmltopdf-binary"

	_, err := New(cfg)
	require.Error(t, err)
}

func TestShutdownWithoutRun(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- application.Shutdown() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown blocked on an application that never ran")
	}
}
