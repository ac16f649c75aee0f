package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashBytes returns a short content hash suitable for cache keys.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:16]
}
