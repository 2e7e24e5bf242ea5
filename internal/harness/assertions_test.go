package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uniqname/internal/resolver"
)

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []StepTrace{
		{Step: 1, Op: OpCreate, Value: "Foo", Events: []resolver.Event{
			{Kind: resolver.EventFree, Value: "Foo"},
			{Kind: resolver.EventResolved, Value: "Foo"},
		}},
		{Step: 2, Op: OpCreate, Value: "Foo (1)", Events: []resolver.Event{
			{Kind: resolver.EventTaken, Value: "Foo"},
			{Kind: resolver.EventScan, Value: "Foo"},
			{Kind: resolver.EventRecheck, Value: "Foo (1)", Number: 1},
			{Kind: resolver.EventResolved, Value: "Foo (1)"},
		}},
	}
	r.State = []RecordState{
		{Entity: "projects", ID: "id-1", Value: "Foo", Trashed: true},
		{Entity: "projects", ID: "id-2", Value: "Foo (1)"},
		{Entity: "tags", ID: "id-3", Value: "x"},
	}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertFinalValues, Values: []string{"Foo (1)"}},
		{Type: AssertFinalValues, IncludeTrashed: true, Values: []string{"Foo", "Foo (1)"}},
		{Type: AssertFinalValues, Entity: "tags", Values: []string{"x"}},
		{Type: AssertFinalValues, Entity: "labels"},
		{Type: AssertEventCount, Event: "resolved", Count: 2},
		{Type: AssertEventCount, Event: "attempt", Count: 0},
	}, "projects")
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertFinalValues, Values: []string{"Foo"}},
		{Type: AssertFinalValues, Values: []string{"Foo", "Foo (1)"}},
		{Type: AssertEventCount, Event: "scan", Count: 2},
	}, "projects")
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], `value 0: expected "Foo", got "Foo (1)"`)
	assert.Contains(t, errs[1], "expected 2 values")
	assert.Contains(t, errs[2], "expected 2 scan events, got 1")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
