package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uniqname/internal/attr"
)

func noop(base string, _ attr.Scope, _ int) (string, error) { return base, nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("b", noop))
	require.NoError(t, reg.Register("a", noop))

	_, ok := reg.Lookup("a")
	assert.True(t, ok)
	_, ok = reg.Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestRegistry_RejectsDuplicatesAndEmpty(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("x", noop))

	assert.Error(t, reg.Register("x", noop))
	assert.Error(t, reg.Register("", noop))
	assert.Error(t, reg.Register("y", nil))
	assert.Panics(t, func() { reg.MustRegister("x", noop) })
}

func TestRegistry_NilIsEmpty(t *testing.T) {
	var reg *Registry
	_, ok := reg.Lookup("x")
	assert.False(t, ok)
	assert.Nil(t, reg.Names())
}

func TestGenerator_Variants(t *testing.T) {
	assert.Equal(t, GeneratorNone, Generator{}.Kind())
	assert.Equal(t, "suffix", Generator{}.String())

	named := Named("uuid")
	assert.Equal(t, GeneratorNamed, named.Kind())
	assert.Equal(t, "uuid", named.Name())
	assert.Equal(t, "named:uuid", named.String())

	assert.Equal(t, GeneratorFunc, Func(noop).Kind())
}

func TestError_Format(t *testing.T) {
	err := NewAttemptsError("name", "Foo", 3)
	assert.Equal(t, `GENERATOR_ERROR: unable to generate unique value after 3 attempts (field=name, value="Foo")`, err.Error())
	assert.False(t, IsConfigError(err))
	assert.False(t, IsStoreError(nil))
}
