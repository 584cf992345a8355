// Package digest fingerprints source text. A translation is bound to the
// digest of the text it translates, so the digest is part of its identity.
package digest

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Size is the length of a fingerprint in hex characters.
const Size = 40

// Empty is the fingerprint of the empty string.
const Empty = "da39a3ee5e6b4b0d3255bfef95601890afd80709"

// Of returns the SHA-1 fingerprint of text as lower-case hex.
func Of(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Combine fingerprints an ordered list of fingerprints. Reordering the parts
// changes the result.
func Combine(parts ...string) string {
	return Of(strings.Join(parts, "\n"))
}
