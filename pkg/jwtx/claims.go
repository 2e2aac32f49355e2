package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of every token the service mints. Type tells access
// and refresh tokens apart; the two are otherwise identical in shape.
type Claims struct {
	jwt.RegisteredClaims

	Type string `json:"type"`
}

// NewClaims builds claims for subject that expire ttl after now. Every call
// gets a fresh jti.
func NewClaims(subject, typ string, ttl time.Duration, issuer string, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Type: typ,
	}
}

// NewJTI returns a random UUIDv4 for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks iss against expected. An empty expected disables the check.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateStructure requires the claims every service token carries.
func (c *Claims) ValidateStructure() error {
	switch {
	case c.Subject == "", c.ID == "", c.Type == "":
		return ErrInvalidClaim
	case c.IssuedAt == nil, c.ExpiresAt == nil:
		return ErrInvalidClaim
	case !c.ExpiresAt.After(c.IssuedAt.Time):
		return ErrInvalidClaim
	}
	return nil
}

// ValidateExpiryAt reports ErrExpired once now has reached exp, and
// ErrNotYetValid while now is before nbf.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
