package security

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/nerrad567/posbridge/internal/infrastructure/config"
)

// Gate holds the process-wide shared secret and checks presented tokens.
//
// A Gate is immutable after construction and safe for concurrent use.
// There is one secret per process: no identities, no expiry.
type Gate struct {
	digest [sha256.Size]byte // plaintext secret, compared by digest
	hash   *phcHash          // set when the secret is configured as a hash
}

// NewGate creates a gate for a plaintext secret.
func NewGate(secret string) (*Gate, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Gate{digest: sha256.Sum256([]byte(secret))}, nil
}

// NewHashedGate creates a gate from an Argon2id PHC string (see HashToken).
func NewHashedGate(encoded string) (*Gate, error) {
	h, err := decodePHC(encoded)
	if err != nil {
		return nil, err
	}
	return &Gate{hash: h}, nil
}

// FromConfig builds the gate described by the auth section.
// A token hash takes precedence over a plaintext token.
func FromConfig(cfg config.AuthConfig) (*Gate, error) {
	if cfg.TokenHash != "" {
		return NewHashedGate(cfg.TokenHash)
	}
	return NewGate(cfg.Token)
}

// Validate reports whether token equals the shared secret.
// The comparison takes the same time whatever the token's content or length.
func (g *Gate) Validate(token string) bool {
	if g.hash != nil {
		return g.hash.matches(token)
	}
	candidate := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(g.digest[:], candidate[:]) == 1
}
