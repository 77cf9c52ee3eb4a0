package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hasher produces and checks salted password digests. The salt is one
// application-wide value, not per-record: stored digests from earlier
// deployments were produced this way, so the scheme must stay
// read-compatible with them. A per-record salt would be stronger but
// would fail verification against every existing record.
type Hasher struct {
	salt string
}

// NewHasher creates a Hasher using the given application salt.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// Hash returns the hex SHA-256 digest of secret combined with the
// application salt. Deterministic: equal inputs yield equal digests.
func (h *Hasher) Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret + h.salt))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether secret hashes to digest. The comparison is
// constant-time.
func (h *Hasher) Verify(secret, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(secret)), []byte(digest)) == 1
}
