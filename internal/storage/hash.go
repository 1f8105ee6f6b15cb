package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the hex sha256 of file content, used to skip files
// whose stored extraction is still current.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
