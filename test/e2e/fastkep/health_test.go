package fastkep_test

import (
	"testing"

	"github.com/aussiebroadwan/fastkep/pkg/fastkepsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	client := fastkepsdk.NewClient(startService(t, serviceOptions{env: relaxedLimits()}))

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.NotEmpty(t, live.Version)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks["database"])
}
