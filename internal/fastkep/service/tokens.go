package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// TokenIssuer mints access and refresh tokens. Every token carries a fresh
// UUIDv4 jti, including the two halves of a single pair.
type TokenIssuer struct {
	Signer     jwtx.Signer
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Metrics    *metricsx.Metrics

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func NewTokenIssuer(signer jwtx.Signer, issuer string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if signer == nil {
		return nil, errors.New("service: token signer is required")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if accessTTL >= refreshTTL {
		return nil, fmt.Errorf("service: access ttl %s must be shorter than refresh ttl %s", accessTTL, refreshTTL)
	}

	return &TokenIssuer{
		Signer:     signer,
		Issuer:     issuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        time.Now,
	}, nil
}

// Issue mints an access and a refresh token for userID at the same instant.
func (i *TokenIssuer) Issue(userID string) (domain.TokenPair, error) {
	now := i.Now()

	access, err := i.mint(userID, domain.TokenKindAccess, i.AccessTTL, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := i.mint(userID, domain.TokenKindRefresh, i.RefreshTTL, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// IssueAccess mints a single access token. Used by refresh, which never
// reissues the refresh token.
func (i *TokenIssuer) IssueAccess(userID string) (domain.IssuedToken, error) {
	return i.mint(userID, domain.TokenKindAccess, i.AccessTTL, i.Now())
}

func (i *TokenIssuer) mint(userID string, kind domain.TokenKind, ttl time.Duration, now time.Time) (domain.IssuedToken, error) {
	claims := jwtx.NewClaims(userID, string(kind), ttl, i.Issuer, now)

	token, err := i.Signer.Sign(claims)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	i.Metrics.TokenIssued(string(kind))

	return domain.IssuedToken{
		Token:     token,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
