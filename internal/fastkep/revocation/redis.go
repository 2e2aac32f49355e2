package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces revocation keys.
const DefaultRedisPrefix = "fastkep:revoked:"

// Redis stores one key per revoked jti with a TTL equal to the token's
// remaining lifetime, so expiry is handled by the server.
type Redis struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ Store = (*Redis)(nil)

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, now: time.Now}
}

// NewRedisFromURL parses a redis:// URL and pings the server.
func NewRedisFromURL(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedis(client, ""), nil
}

func (r *Redis) key(jti string) string { return r.prefix + jti }

func (r *Redis) Revoke(ctx context.Context, t domain.RevokedToken) error {
	ttl := t.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		// Already expired: the verifier rejects it before asking us.
		return nil
	}
	// Round up so the key never disappears before the token expires.
	ttl = ttl.Truncate(time.Second) + time.Second

	err := r.client.SetArgs(ctx, r.key(t.JTI), t.UserID, redis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if errors.Is(err, redis.Nil) {
		// NX lost: the jti was already revoked.
		return nil
	}
	return err
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Purge is a no-op; keys expire on their own.
func (r *Redis) Purge(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
