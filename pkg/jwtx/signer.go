package jwtx

// Signer turns claims into a compact JWS.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	Validate() error
}

// NewSignerHS256 creates an HMAC-SHA256 signer. The secret must be at least
// 32 bytes.
func NewSignerHS256(kid string, secret []byte) (Signer, error) {
	return newHS256Signer(kid, secret)
}

// NewSignerEdDSA creates an Ed25519 signer from a PKCS8 PEM private key.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	return newEdDSASigner(kid, pemKey)
}
