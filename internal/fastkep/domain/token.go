package domain

import (
	"time"

	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
)

// TokenKind separates access tokens from refresh tokens. It is carried in the
// "type" claim.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// TokenPair is what register and login hand back.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// IssuedToken is a single signed token, as minted on refresh.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// RevokedToken is a revocation record. It can be dropped once ExpiresAt has
// passed since the token would be rejected as expired anyway.
type RevokedToken struct {
	JTI       string
	UserID    string
	Kind      TokenKind
	ExpiresAt time.Time
	RevokedAt time.Time
}

// Principal is the outcome of a successful verification: the resolved user
// plus the claims of the token that proved it.
type Principal struct {
	User   User
	Claims jwtx.Claims
}

// Kind returns the verified token kind.
func (p Principal) Kind() TokenKind { return TokenKind(p.Claims.Type) }

// ExpiresAt returns the verified token's expiry, or the zero time.
func (p Principal) ExpiresAt() time.Time {
	if p.Claims.ExpiresAt == nil {
		return time.Time{}
	}
	return p.Claims.ExpiresAt.Time
}
