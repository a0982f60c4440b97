package hash

import (
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns the xxh3 hash of a canonical plan encoding.
func Fingerprint(data []byte) uint64 {
	return xxh3.Hash(data)
}

// FingerprintHex returns Fingerprint as a 16-digit lowercase hex string,
// suitable for an HTTP ETag.
func FingerprintHex(data []byte) string {
	s := strconv.FormatUint(Fingerprint(data), 16)
	for len(s) < 16 {
		s = "0" + s
	}

	return s
}
