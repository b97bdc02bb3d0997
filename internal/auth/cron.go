package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CronGuard checks the shared secret presented by the scheduler that
// triggers maintenance endpoints. Only a bcrypt hash of the secret is kept
// in memory.
type CronGuard struct {
	hash []byte
}

// NewCronGuard hashes the secret. An empty secret yields a guard that
// rejects every token.
func NewCronGuard(secret string, bcryptCost int) (*CronGuard, error) {
	if secret == "" {
		return &CronGuard{}, nil
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(digest(secret), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing cron secret: %w", err)
	}
	return &CronGuard{hash: hash}, nil
}

// Enabled reports whether a secret is configured.
func (g *CronGuard) Enabled() bool {
	return len(g.hash) > 0
}

// Verify reports whether token matches the configured secret.
func (g *CronGuard) Verify(token string) bool {
	if !g.Enabled() || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, digest(token)) == nil
}

// digest maps a secret of any length to 64 hex characters, below bcrypt's
// 72-byte input limit, so every byte of the secret is significant.
func digest(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}
