package testutil

import (
	"crypto/sha256"
	"encoding/hex"

	"rawdb/internal/model"
)

// SHA256Hex returns the SHA-256 checksum of data as a lowercase hex string.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ChecksumOf returns the SHA-256 checksum of data as a present Checksum.
func ChecksumOf(data []byte) model.Checksum {
	h := sha256.Sum256(data)
	return model.NewChecksum(h[:])
}
