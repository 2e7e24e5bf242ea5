package resolver

import (
	"context"

	"github.com/roach88/uniqname/internal/attr"
)

// Filter narrows a store lookup to one field within one scope.
type Filter struct {
	// Field is the unique field being checked (e.g. "name").
	Field string

	// Scope constrains matches to records whose scope fields all equal the
	// given values. Null equals null. Empty means every record.
	Scope attr.Scope

	// ExcludeID skips the record with this id (the record being updated).
	// Empty excludes nothing.
	ExcludeID string

	// IncludeTrashed makes soft-deleted records count as matches.
	IncludeTrashed bool
}

// ExactOrPrefix selects values equal to Exact or starting with Prefix.
// Prefix comparison is case-sensitive and byte-exact.
type ExactOrPrefix struct {
	Exact  string
	Prefix string
}

// Store is the persistence contract the resolver needs.
//
// Implementations must apply Filter.Scope as a conjunction of null-safe
// equalities and must leave soft-deleted records out unless
// Filter.IncludeTrashed is set.
type Store interface {
	// CountMatching returns how many records in the filter have Field == value.
	CountMatching(ctx context.Context, f Filter, value string) (int, error)

	// FetchValues returns the Field values of every record in the filter that
	// matches p. Called once per default-path resolution.
	FetchValues(ctx context.Context, f Filter, p ExactOrPrefix) ([]string, error)
}
