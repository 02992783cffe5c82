// Package hashwatch computes content fingerprints for monitored files and
// compares them against the baseline recorded in the store.
package hashwatch

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"shieldclaw/internal/store"
)

// Fingerprint hashes the raw byte content of the file at path. The digest is
// byte-exact: a cosmetic-only edit still changes it. A read failure (missing
// file, permission denied) is returned to the caller, which reports it as a
// per-file status rather than failing the cycle.
func Fingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return FingerprintBytes(data), nil
}

// FingerprintBytes hashes a byte slice in the sha256:<hex> form used across
// the store.
func FingerprintBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// BaselineOf returns the active baseline fingerprint for path, or
// store.ErrNoBaseline when no history exists.
func BaselineOf(s *store.Store, path string) (string, error) {
	rec, err := s.ActiveBaseline(path)
	if err != nil {
		return "", err
	}
	return rec.ContentHash, nil
}
