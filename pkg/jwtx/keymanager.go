package jwtx

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/fastkep/pkg/cryptox"
)

const (
	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"
)

// KeyManagerOptions selects the algorithm and key material for a process.
// When the material for the chosen algorithm is empty a random key is
// generated and the manager reports itself as ephemeral.
type KeyManagerOptions struct {
	Algorithm string
	Issuer    string

	// KID overrides the key id derived from the key material.
	KID string

	// Secret is the HS256 shared secret.
	Secret []byte

	// PrivateKeyPEM is the EdDSA PKCS8 private key.
	PrivateKeyPEM []byte
}

// KeyManager pairs the signer and verifier built from one key. It is created
// once at startup and passed to whatever needs to mint or check tokens.
type KeyManager struct {
	Signer   Signer
	Verifier Verifier

	algorithm string
	ephemeral bool
}

func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}

	km := &KeyManager{algorithm: opts.Algorithm}

	switch strings.ToUpper(opts.Algorithm) {
	case "", strings.ToUpper(AlgorithmHS256):
		km.algorithm = AlgorithmHS256

		secret := opts.Secret
		if len(secret) == 0 {
			var err error
			if secret, err = cryptox.GenerateSecret(MinHS256SecretSize); err != nil {
				return nil, err
			}
			km.ephemeral = true
		}

		kid := opts.KID
		if kid == "" {
			kid = deriveKID(secret)
		}

		signer, err := newHS256Signer(kid, secret)
		if err != nil {
			return nil, err
		}
		km.Signer = signer
		km.Verifier = NewVerifierHS256(kid, secret, opts.Issuer)

	case strings.ToUpper(AlgorithmEdDSA):
		km.algorithm = AlgorithmEdDSA

		pemKey := opts.PrivateKeyPEM
		if len(pemKey) == 0 {
			var err error
			if pemKey, err = cryptox.GenerateEd25519Key(); err != nil {
				return nil, err
			}
			km.ephemeral = true
		}

		signer, err := newEdDSASigner(opts.KID, pemKey)
		if err != nil {
			return nil, err
		}
		if signer.kid == "" {
			signer.kid = deriveKID(signer.pub)
		}
		km.Signer = signer
		km.Verifier = NewVerifierEdDSA(signer.kid, signer.pub, opts.Issuer)

	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", opts.Algorithm)
	}

	if err := km.Signer.Validate(); err != nil {
		return nil, err
	}
	return km, nil
}

func (km *KeyManager) Algorithm() string { return km.algorithm }

// Ephemeral reports whether the key was generated in memory. Tokens signed
// with an ephemeral key do not survive a restart.
func (km *KeyManager) Ephemeral() bool { return km.ephemeral }

// deriveKID fingerprints key material so that every process loading the same
// key agrees on the kid.
func deriveKID(material []byte) string {
	sum := sha256.Sum256(material)
	return hex.EncodeToString(sum[:8])
}
