// Package couponcode generates human-readable redemption codes.
package couponcode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet excludes visually ambiguous characters (0, 1, I, O). Its length is
// a power of two, so byte-mod indexing is uniform.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	DefaultPrefix     = "CIVI"
	DefaultBodyLength = 8
)

// Generate returns a code of the form <PREFIX>-<BODY> with the body drawn
// uniformly from Alphabet. Empty prefix and non-positive length fall back to
// the defaults. Uniqueness across calls is the caller's responsibility.
func Generate(prefix string, length int) (string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if length <= 0 {
		length = DefaultBodyLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	body := make([]byte, length)
	for i, b := range buf {
		body[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return prefix + "-" + string(body), nil
}
