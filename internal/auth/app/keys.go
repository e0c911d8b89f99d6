package app

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blightstone/blightstone/pkg/jwtx"
)

// initSigner loads the access-token signing key. With no key file configured
// the key is generated in-process: tokens then die with the process, which is
// fine for dev but not for prod.
func initSigner(cfg Config, logger *slog.Logger) (*jwtx.Signer, error) {
	if cfg.KeyFile == "" {
		if cfg.Env == "prod" {
			return nil, errors.New("AUTH_KEY_FILE is required in prod")
		}
		logger.Warn("no signing key file configured, using an ephemeral key")
		return jwtx.NewEphemeralSigner(cfg.Issuer)
	}

	signer, err := jwtx.NewSignerFromPEMFile(cfg.KeyFile, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	logger.Info("signing key loaded", "path", cfg.KeyFile)
	return signer, nil
}

// sessionKeys derives the cookie hash and block keys from the configured
// secret. Distinct derivation labels keep the two keys independent.
func sessionKeys(secret string) (hashKey, blockKey []byte) {
	h := sha256.Sum256([]byte(secret + ":cookie-hash"))
	b := sha256.Sum256([]byte(secret + ":cookie-block"))
	return h[:], b[:]
}
