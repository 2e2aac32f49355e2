// Package revocation records revoked token IDs until the tokens would have
// expired on their own.
package revocation

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
)

// Store is implemented by every backend. Revoke is idempotent and durable
// once it returns nil.
type Store interface {
	Revoke(ctx context.Context, t domain.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Purge removes records whose token expired at or before now and reports
	// how many went. Backends with native expiry report zero.
	Purge(ctx context.Context, now time.Time) (int64, error)
}

// Backend names accepted in configuration.
const (
	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)
