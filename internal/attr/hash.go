package attr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed keys.
// Version suffix enables future algorithm migration.
const (
	DomainScope = "uniqname/scope/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ScopeKey computes a stable key for a scope. Two scopes with the same
// field/value pairs (in any order) share a key; null values participate like
// any other value, so two null-scoped records land in the same partition.
//
// The stores index (entity, scope_key, name) to back the resolver with a
// storage-level uniqueness constraint.
func ScopeKey(scope Scope) (string, error) {
	canonical, err := MarshalCanonical(scope.Object())
	if err != nil {
		return "", fmt.Errorf("ScopeKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainScope, canonical), nil
}

// MustScopeKey is like ScopeKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustScopeKey(scope Scope) string {
	key, err := ScopeKey(scope)
	if err != nil {
		panic(err)
	}
	return key
}
