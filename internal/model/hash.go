package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for record digests.
// The version suffix allows the canonical form to change without silently
// colliding with older digests.
const (
	DomainEvent   = "atlas/event/v1"
	DomainPattern = "atlas/pattern/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the content digest of a raw record under the given domain.
// Formatting and key order do not affect the result.
func Digest(domain string, raw []byte) (string, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}
