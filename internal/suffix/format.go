// Package suffix encodes and decodes the disambiguating suffix appended to
// colliding names.
//
// A format is a template containing exactly one {n} placeholder, e.g. " ({n})"
// or "-{n}". The text before the placeholder is the separator; the text after
// it is the trailer. Every template character other than the placeholder is
// literal, so parentheses, dashes and dots are quoted before the template is
// used as a pattern.
package suffix

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Placeholder is the token replaced by the suffix number.
const Placeholder = "{n}"

// Default is the format used when none is configured: "Foo" → "Foo (1)".
const Default = " ({n})"

// Format is a compiled suffix template. The zero value is not usable; obtain
// one from Parse.
type Format struct {
	template  string
	separator string
	trailer   string
	pattern   *regexp.Regexp
}

// FormatError reports an unusable template.
type FormatError struct {
	Template string
	Reason   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("suffix format %q %s", e.Template, e.Reason)
}

var cache sync.Map // template → *Format

// Parse compiles template. Compiled formats are cached per distinct template,
// so repeated calls are cheap.
//
// Returns a *FormatError when the placeholder is missing or appears more than
// once.
func Parse(template string) (*Format, error) {
	if f, ok := cache.Load(template); ok {
		return f.(*Format), nil
	}

	switch strings.Count(template, Placeholder) {
	case 0:
		return nil, &FormatError{Template: template, Reason: "must contain " + Placeholder}
	case 1:
	default:
		return nil, &FormatError{Template: template, Reason: "must contain exactly one " + Placeholder}
	}

	pos := strings.Index(template, Placeholder)
	separator := template[:pos]
	trailer := template[pos+len(Placeholder):]

	// (?s) lets the base span newlines; the base group is greedy so
	// "Foo (1) (2)" decodes to base "Foo (1)", number 2.
	expr := `(?s)^(.*)` + regexp.QuoteMeta(separator) + `(\d+)` + regexp.QuoteMeta(trailer) + `$`

	f := &Format{
		template:  template,
		separator: separator,
		trailer:   trailer,
		pattern:   regexp.MustCompile(expr),
	}
	actual, _ := cache.LoadOrStore(template, f)
	return actual.(*Format), nil
}

// MustParse is like Parse but panics on error.
func MustParse(template string) *Format {
	f, err := Parse(template)
	if err != nil {
		panic(err)
	}
	return f
}

// Template returns the source template.
func (f *Format) Template() string { return f.template }

// Separator returns the literal text before the placeholder.
func (f *Format) Separator() string { return f.separator }

// Trailer returns the literal text after the placeholder.
func (f *Format) Trailer() string { return f.trailer }

// String implements fmt.Stringer.
func (f *Format) String() string { return f.template }

// Encode renders the suffix for n: " ({n})" with 3 gives " (3)".
func (f *Format) Encode(n int) string {
	return f.separator + strconv.Itoa(n) + f.trailer
}

// Apply appends the suffix for n to base.
func (f *Format) Apply(base string, n int) string {
	return base + f.Encode(n)
}

// Decode splits candidate into base and suffix number.
// ok is false when candidate does not end with a suffix in this format, or
// when the number does not fit in an int.
func (f *Format) Decode(candidate string) (base string, n int, ok bool) {
	m := f.pattern.FindStringSubmatch(candidate)
	if m == nil {
		return candidate, 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return candidate, 0, false
	}
	return m[1], n, true
}

// Base strips a recognised suffix from candidate. Values without a suffix are
// returned unchanged.
func (f *Format) Base(candidate string) string {
	base, _, _ := f.Decode(candidate)
	return base
}
