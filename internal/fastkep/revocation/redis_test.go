package revocation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *Redis {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	r, err := NewRedisFromURL(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisStore(t *testing.T) {
	r := startRedis(t)
	storeContract(t, r, false)
}

func TestRedisKeyExpiresWithToken(t *testing.T) {
	r := startRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, domain.RevokedToken{
		JTI: "short", UserID: "u1", Kind: domain.TokenKindAccess, ExpiresAt: time.Now().Add(time.Second),
	}))

	ttl, err := r.client.TTL(ctx, r.key("short")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, 2*time.Second)

	// Already-expired tokens are not written at all.
	require.NoError(t, r.Revoke(ctx, domain.RevokedToken{JTI: "gone", ExpiresAt: time.Now().Add(-time.Second)}))
	revoked, err := r.IsRevoked(ctx, "gone")
	require.NoError(t, err)
	require.False(t, revoked)
}
