package harness

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uniqname/internal/records"
	"github.com/roach88/uniqname/internal/resolver"
	"github.com/roach88/uniqname/internal/store"
)

func mustParse(t *testing.T, doc string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestRun_ExpectationMismatchFails(t *testing.T) {
	s := mustParse(t, `
name: mismatch
description: "wrong expectation"
entity: projects
steps:
  - op: create
    attrs: { name: Foo }
  - op: create
    attrs: { name: Foo }
    expect: { value: Foo }
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected value "Foo", got "Foo (1)"`)
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	s := mustParse(t, `
name: unexpected
description: "missing unique field"
entity: projects
steps:
  - op: create
    attrs: { title: Foo }
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, ErrCodeOther, result.Trace[0].Error)
}

func TestRun_ExpectedErrorPasses(t *testing.T) {
	s := mustParse(t, `
name: expected
description: "broken generator"
entity: slugs
config:
  entities:
    slugs:
      generator: { name: nope }
steps:
  - op: create
    attrs: { name: Foo }
    expect: { error: CONFIG_ERROR }
  - op: resolve
    attrs: { name: Bar }
    expect: { error: CONFIG_ERROR }
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_HardDeleteFreesName(t *testing.T) {
	s := mustParse(t, `
name: hard_delete
description: "entities without soft deletes remove rows"
entity: tags
config:
  entities:
    tags:
      soft_deletes: false
steps:
  - op: create
    ref: a
    attrs: { name: Foo }
  - op: delete
    ref: a
  - op: create
    attrs: { name: Foo }
    expect: { value: Foo }
  - op: restore
    ref: a
    expect: { error: NOT_FOUND }
assertions:
  - type: final_values
    include_trashed: true
    values: [Foo]
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_MultipleEntities(t *testing.T) {
	s := mustParse(t, `
name: entities
description: "entities never conflict with each other"
entity: projects
steps:
  - op: create
    attrs: { name: Foo }
  - op: create
    entity: tags
    attrs: { name: Foo }
    expect: { value: Foo }
assertions:
  - type: final_values
    values: [Foo]
  - type: final_values
    entity: tags
    values: [Foo]
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.State, 2)
	assert.Equal(t, "projects", result.State[0].Entity)
	assert.Equal(t, "tags", result.State[1].Entity)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{resolver.NewConfigError("bad", nil), "CONFIG_ERROR"},
		{fmt.Errorf("get: %w", store.ErrNotFound), ErrCodeNotFound},
		{fmt.Errorf("restore: %w", records.ErrNotTrashed), ErrCodeNotTrashed},
		{errors.New("boom"), ErrCodeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), tt.err.Error())
	}
}
