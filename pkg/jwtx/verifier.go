package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a token's structure, signature and issuer and hands back
// its claims. Time-based claims are left to the caller, which owns the clock
// (see Claims.ValidateExpiryAt).
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// parseSigned parses tokenStr, insisting on alg, resolving the key through
// keyFunc and skipping the library's own exp/nbf checks.
func parseSigned(tokenStr, alg, issuer string, keyFunc jwt.Keyfunc) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	if _, err := parser.ParseWithClaims(tokenStr, &claims, keyFunc); err != nil {
		return Claims{}, classify(err)
	}

	if err := claims.ValidateStructure(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(issuer); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}

// kidMatches accepts a token with no kid header or with the expected one.
func kidMatches(t *jwt.Token, want string) error {
	kid, _ := t.Header["kid"].(string)
	if kid != "" && want != "" && kid != want {
		return fmt.Errorf("%w %q", ErrUnknownKID, kid)
	}
	return nil
}
