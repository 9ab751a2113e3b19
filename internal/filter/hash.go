package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for config fingerprints. The version suffix enables future
// algorithm migration without colliding with old fingerprints.
const domainConfig = "sift/filter-config/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a config.
//
// Compilation is deterministic, so collaborators key cached result sets on
// the fingerprint: equal configs produce equal fingerprints across
// processes and restarts. The fingerprint identifies the literal config;
// it does not attempt semantic equivalence (two configs that happen to
// select the same rows still fingerprint differently).
func Fingerprint(c Config) (string, error) {
	canonical, err := MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(domainConfig, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(c Config) string {
	fp, err := Fingerprint(c)
	if err != nil {
		panic(err)
	}
	return fp
}
