package generators

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/resolver"
)

// Names of the built-in generators.
const (
	NameUUID    = "uuid"
	NameScope   = "scope"
	NameAttempt = "attempt"
)

// IDSource returns a fresh unique token per call.
type IDSource func() string

// UUIDv7Source generates time-sortable UUIDv7 strings.
// Panics if UUID generation fails (should never happen in practice).
func UUIDv7Source() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewRegistry returns a registry holding the built-ins, using ids for the
// uuid generator. A nil ids means UUIDv7Source.
func NewRegistry(ids IDSource) *resolver.Registry {
	reg := resolver.NewRegistry()
	Register(reg, ids)
	return reg
}

// Register adds the built-ins to reg.
func Register(reg *resolver.Registry, ids IDSource) {
	if ids == nil {
		ids = UUIDv7Source
	}
	reg.MustRegister(NameUUID, UUID(ids))
	reg.MustRegister(NameScope, Scope)
	reg.MustRegister(NameAttempt, Attempt)
}

// UUID returns a generator appending the last 8 hex characters of an id.
// For UUIDv7 these come from the random tail; the timestamp prefix barely
// changes between calls.
func UUID(ids IDSource) resolver.GenerateFunc {
	return func(base string, _ attr.Scope, _ int) (string, error) {
		id := strings.ReplaceAll(ids(), "-", "")
		if len(id) < 8 {
			return "", fmt.Errorf("uuid generator: id %q too short", id)
		}
		return base + "-" + id[len(id)-8:], nil
	}
}

// Scope appends the scope values. Retries add the attempt number so each
// call yields a new value; an empty scope degrades to Attempt.
func Scope(base string, scope attr.Scope, attempt int) (string, error) {
	parts := make([]string, 0, len(scope)+1)
	for _, p := range scope {
		if attr.IsNull(p.Value) {
			continue
		}
		parts = append(parts, attr.Format(p.Value))
	}
	if len(parts) == 0 {
		return Attempt(base, scope, attempt)
	}
	if attempt > 0 {
		parts = append(parts, fmt.Sprint(attempt+1))
	}
	return base + "-" + strings.Join(parts, "-"), nil
}

// Attempt appends the one-based attempt number.
func Attempt(base string, _ attr.Scope, attempt int) (string, error) {
	return fmt.Sprintf("%s-%d", base, attempt+1), nil
}
