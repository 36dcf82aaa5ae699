// Package checksum provides content digests used to detect unchanged output files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Equal reports whether data hashes to the given hex digest.
func Equal(data []byte, hexDigest string) bool {
	return Sum(data) == hexDigest
}
