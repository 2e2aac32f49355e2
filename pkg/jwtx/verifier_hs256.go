package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

type HS256Verifier struct {
	kid    string
	secret []byte
	issuer string
}

// NewVerifierHS256 verifies tokens signed with the same shared secret.
func NewVerifierHS256(kid string, secret []byte, issuer string) *HS256Verifier {
	return &HS256Verifier{kid: kid, secret: append([]byte(nil), secret...), issuer: issuer}
}

func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	return parseSigned(tokenStr, jwt.SigningMethodHS256.Alg(), v.issuer, func(t *jwt.Token) (any, error) {
		if err := kidMatches(t, v.kid); err != nil {
			return nil, err
		}
		return v.secret, nil
	})
}
