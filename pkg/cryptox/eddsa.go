package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// GenerateEd25519Key returns a fresh Ed25519 private key as a PKCS8 PEM block.
func GenerateEd25519Key() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrCreateEd25519Key reads a PEM key from path, generating and writing a
// new one (mode 0600) when the file does not exist. created reports whether a
// new key was written.
func LoadOrCreateEd25519Key(path string) (pemKey []byte, created bool, err error) {
	path = filepath.Clean(path)

	pemKey, err = os.ReadFile(path)
	if err == nil {
		return pemKey, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("cryptox: read key: %w", err)
	}

	pemKey, err = GenerateEd25519Key()
	if err != nil {
		return nil, false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, false, fmt.Errorf("cryptox: key dir: %w", err)
	}
	if err := os.WriteFile(path, pemKey, 0o600); err != nil {
		return nil, false, fmt.Errorf("cryptox: write key: %w", err)
	}
	return pemKey, true, nil
}
