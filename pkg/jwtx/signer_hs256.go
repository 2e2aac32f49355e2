package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256SecretSize is the shortest shared secret HS256 will accept.
const MinHS256SecretSize = 32

type HS256Signer struct {
	kid    string
	secret []byte
}

func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHS256SecretSize {
		return nil, fmt.Errorf("jwtx: HS256 secret must be at least %d bytes", MinHS256SecretSize)
	}
	return &HS256Signer{kid: kid, secret: append([]byte(nil), secret...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.secret)
}

func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinHS256SecretSize {
		return errors.New("jwtx: HS256 secret too short")
	}
	return nil
}
