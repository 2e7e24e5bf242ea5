package resolver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/uniqname/internal/attr"
)

// GenerateFunc produces a candidate for the given attempt. base is always the
// original candidate value. Implementations may be random; every result is
// checked against the store before it is accepted.
type GenerateFunc func(base string, scope attr.Scope, attempt int) (string, error)

// GeneratorKind tags the active Generator variant.
type GeneratorKind int

const (
	// GeneratorNone selects the default suffix algorithm.
	GeneratorNone GeneratorKind = iota
	// GeneratorNamed looks the generator up in a Registry by name.
	GeneratorNamed
	// GeneratorFunc calls a function value directly.
	GeneratorFunc
)

// Generator selects how colliding values are rewritten. The zero value is
// GeneratorNone. Exactly one variant is active.
type Generator struct {
	kind GeneratorKind
	name string
	fn   GenerateFunc
}

// Named returns a Generator resolved by name through the Resolver's Registry.
func Named(name string) Generator {
	return Generator{kind: GeneratorNamed, name: name}
}

// Func returns a Generator that calls fn.
func Func(fn GenerateFunc) Generator {
	return Generator{kind: GeneratorFunc, fn: fn}
}

// Kind returns the active variant.
func (g Generator) Kind() GeneratorKind { return g.kind }

// Name returns the registry name of a GeneratorNamed generator.
func (g Generator) Name() string { return g.name }

// String implements fmt.Stringer.
func (g Generator) String() string {
	switch g.kind {
	case GeneratorNone:
		return "suffix"
	case GeneratorNamed:
		return "named:" + g.name
	default:
		return "func"
	}
}

// bind resolves the generator to a single function. A nil function with a
// nil error means the default suffix algorithm applies.
func (g Generator) bind(reg *Registry) (GenerateFunc, *Error) {
	switch g.kind {
	case GeneratorNone:
		return nil, nil
	case GeneratorNamed:
		if g.name == "" {
			return nil, NewConfigError("generator must be a method name or a callable", nil)
		}
		fn, ok := reg.Lookup(g.name)
		if !ok {
			return nil, NewConfigError(fmt.Sprintf("unknown generator %q", g.name), nil)
		}
		return fn, nil
	case GeneratorFunc:
		if g.fn == nil {
			return nil, NewConfigError("generator must be a method name or a callable", nil)
		}
		return g.fn, nil
	default:
		return nil, NewConfigError("generator must be a method name or a callable", nil)
	}
}

// Registry maps generator names to functions.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]GenerateFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]GenerateFunc)}
}

// Register adds fn under name. Registering the same name twice is an error.
func (r *Registry) Register(name string, fn GenerateFunc) error {
	if name == "" {
		return fmt.Errorf("generator name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("generator %q: function must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("generator %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn GenerateFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered under name.
// A nil Registry has no entries.
func (r *Registry) Lookup(name string) (GenerateFunc, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
