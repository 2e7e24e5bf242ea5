package store

import (
	"errors"
	"fmt"

	"github.com/roach88/uniqname/internal/attr"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Record is one stored row.
type Record struct {
	ID     string
	Entity string

	// Seq is the logical time of the last write.
	Seq int64

	// Attrs holds every attribute, the unique field included.
	Attrs attr.Object

	// UniqueField names the attribute kept unique. UniqueValue and ScopeKey
	// are derived from Attrs by Derive.
	UniqueField string
	UniqueValue string
	ScopeKey    string

	// DeletedAt is the seq at which the record was soft-deleted, 0 if live.
	DeletedAt int64
}

// Trashed reports whether the record is soft-deleted.
func (r Record) Trashed() bool {
	return r.DeletedAt != 0
}

// Value returns the unique field's current value.
func (r Record) Value() string {
	return r.UniqueValue
}

// Derive recomputes UniqueValue and ScopeKey from Attrs.
//
// The unique field must hold a string. Scope fields may hold any value,
// missing ones count as null.
func (r *Record) Derive(uniqueField string, scopeFields []string) error {
	v, ok := r.Attrs[uniqueField]
	if !ok {
		return fmt.Errorf("derive record: missing unique field %q", uniqueField)
	}
	s, ok := v.(attr.String)
	if !ok {
		return fmt.Errorf("derive record: unique field %q must be a string, got %T", uniqueField, v)
	}

	key, err := attr.ScopeKey(attr.ScopeOf(r.Attrs, scopeFields))
	if err != nil {
		return fmt.Errorf("derive record: %w", err)
	}

	r.UniqueField = uniqueField
	r.UniqueValue = string(s)
	r.ScopeKey = key
	return nil
}
