package revocation

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
)

// SQL stores revocations in the revoked_tokens table of the main database.
type SQL struct {
	store store.Store
}

var _ Store = (*SQL)(nil)

func NewSQL(s store.Store) *SQL {
	return &SQL{store: s}
}

func (s *SQL) Revoke(ctx context.Context, t domain.RevokedToken) error {
	return s.store.RevokedTokens().RevokeToken(ctx, t)
}

func (s *SQL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.store.RevokedTokens().IsTokenRevoked(ctx, jti)
}

func (s *SQL) Purge(ctx context.Context, now time.Time) (int64, error) {
	return s.store.RevokedTokens().DeleteExpiredRevokedTokens(ctx, now)
}
