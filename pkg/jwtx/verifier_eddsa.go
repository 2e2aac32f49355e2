package jwtx

import (
	"crypto/ed25519"

	"github.com/golang-jwt/jwt/v5"
)

type EdDSAVerifier struct {
	kid    string
	pub    ed25519.PublicKey
	issuer string
}

// NewVerifierEdDSA verifies tokens against a single Ed25519 public key.
func NewVerifierEdDSA(kid string, pub ed25519.PublicKey, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{kid: kid, pub: pub, issuer: issuer}
}

func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	return parseSigned(tokenStr, jwt.SigningMethodEdDSA.Alg(), v.issuer, func(t *jwt.Token) (any, error) {
		if err := kidMatches(t, v.kid); err != nil {
			return nil, err
		}
		return v.pub, nil
	})
}
