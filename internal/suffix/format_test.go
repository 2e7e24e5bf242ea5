package suffix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Default(t *testing.T) {
	f, err := Parse(Default)
	require.NoError(t, err)

	assert.Equal(t, " (", f.Separator())
	assert.Equal(t, ")", f.Trailer())
	assert.Equal(t, " ({n})", f.Template())
}

func TestParse_MissingPlaceholder(t *testing.T) {
	_, err := Parse("meh")
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "meh", fe.Template)
	assert.Contains(t, err.Error(), "must contain {n}")
}

func TestParse_DuplicatePlaceholder(t *testing.T) {
	_, err := Parse("-{n}-{n}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")
}

func TestParse_Cached(t *testing.T) {
	a := MustParse("_{n}")
	b := MustParse("_{n}")
	assert.Same(t, a, b)
}

func TestEncode(t *testing.T) {
	assert.Equal(t, " (3)", MustParse(Default).Encode(3))
	assert.Equal(t, "-1", MustParse("-{n}").Encode(1))
	assert.Equal(t, "[#12]", MustParse("[#{n}]").Encode(12))
	assert.Equal(t, "Foo (4)", MustParse(Default).Apply("Foo", 4))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		template string
		input    string
		base     string
		n        int
		ok       bool
	}{
		{"default suffix", Default, "Foo (1)", "Foo", 1, true},
		{"multi digit", Default, "Foo (250000)", "Foo", 250000, true},
		{"no suffix", Default, "Foo", "Foo", 0, false},
		{"non numeric", Default, "Foo (bar)", "Foo (bar)", 0, false},
		{"missing space", Default, "Foo(1)", "Foo(1)", 0, false},
		{"nested suffix is greedy", Default, "Foo (1) (2)", "Foo (1)", 2, true},
		{"dash format", "-{n}", "my-slug-2", "my-slug", 2, true},
		{"dash format no number", "-{n}", "my-slug", "my-slug", 0, false},
		{"regex metacharacters are literal", ".{n}*", "a.5*", "a", 5, true},
		{"dot does not match any char", ".{n}*", "ax5*", "ax5*", 0, false},
		{"placeholder at start", "{n}:", "Foo7:", "Foo", 7, true},
		{"empty base", Default, " (3)", "", 3, true},
		{"multiline base", Default, "Foo\nBar (2)", "Foo\nBar", 2, true},
		{"unicode base", Default, "Café (1)", "Café", 1, true},
		{"non ascii digits rejected", Default, "Foo (١)", "Foo (١)", 0, false},
		{"overflow is no match", Default, "Foo (99999999999999999999999)", "Foo (99999999999999999999999)", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, n, ok := MustParse(tt.template).Decode(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestBase(t *testing.T) {
	f := MustParse(Default)
	assert.Equal(t, "Foo", f.Base("Foo (2)"))
	assert.Equal(t, "Foo", f.Base("Foo"))
}
