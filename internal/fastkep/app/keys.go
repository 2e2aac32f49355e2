package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/fastkep/pkg/cryptox"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
)

// InitSigningKeys builds the single signing key used for every token.
//
//   - HS256 uses AUTH_SIGNING_SECRET. Without one an ephemeral secret is
//     generated and every token dies with the process.
//   - EdDSA loads AUTH_SIGNING_KEY_FILE, creating it on first start. Without
//     a file the key is ephemeral.
//
// Rotating the key invalidates all outstanding tokens; there is no grace
// period.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.SigningAlg,
		Issuer:    cfg.Issuer,
	}

	switch strings.ToUpper(cfg.SigningAlg) {
	case strings.ToUpper(jwtx.AlgorithmEdDSA):
		if cfg.SigningKeyFile != "" {
			pemKey, created, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
			if err != nil {
				return nil, fmt.Errorf("load signing key: %w", err)
			}
			if created {
				logger.Info("generated new EdDSA signing key", "path", cfg.SigningKeyFile)
			}
			opts.PrivateKeyPEM = pemKey
		}
	default:
		opts.Secret = []byte(cfg.SigningSecret)
	}

	km, err := jwtx.NewKeyManager(opts)
	if err != nil {
		return nil, err
	}

	if km.Ephemeral() {
		logger.Warn("signing key is ephemeral; tokens will not survive a restart",
			"algorithm", km.Algorithm(),
		)
	} else {
		logger.Info("signing key loaded", "algorithm", km.Algorithm())
	}
	return km, nil
}
