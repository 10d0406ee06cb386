// Package identity derives the pseudonymous caller identity used for rate
// limiting, like and report deduplication, and post ownership.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters kept from the digest.
const HashLength = 32

// DefaultSalt is used when no salt is configured. Production config rejects it.
const DefaultSalt = "echo-hole-salt"

// Hasher derives a stable opaque identity from network address and user agent.
type Hasher struct {
	salt string
}

// NewHasher returns a Hasher keyed by salt. An empty salt falls back to DefaultSalt.
func NewHasher(salt string) *Hasher {
	if salt == "" {
		salt = DefaultSalt
	}
	return &Hasher{salt: salt}
}

// Hash returns the first HashLength hex characters of sha256(ip|userAgent|salt).
func (h *Hasher) Hash(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent + "|" + h.salt))
	return hex.EncodeToString(sum[:])[:HashLength]
}
