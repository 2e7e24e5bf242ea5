package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/uniqname/internal/resolver"
)

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, entity string) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, entity); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, entity string) error {
	switch a.Type {
	case AssertFinalValues:
		if a.Entity != "" {
			entity = a.Entity
		}
		return assertFinalValues(result, entity, a.Values, a.IncludeTrashed)
	case AssertEventCount:
		return assertEventCount(result, resolver.EventKind(a.Event), a.Count)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertFinalValues(result *Result, entity string, want []string, includeTrashed bool) error {
	got := []string{}
	for _, rec := range result.State {
		if rec.Entity != entity || (rec.Trashed && !includeTrashed) {
			continue
		}
		got = append(got, rec.Value)
	}
	if want == nil {
		want = []string{}
	}
	if len(got) != len(want) {
		return fmt.Errorf("expected %d values [%s], got %d [%s]", len(want), quoteAll(want), len(got), quoteAll(got))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("value %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	return nil
}

func assertEventCount(result *Result, kind resolver.EventKind, want int) error {
	got := 0
	for _, e := range result.Events() {
		if e.Kind == kind {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("expected %d %s events, got %d", want, kind, got)
	}
	return nil
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
