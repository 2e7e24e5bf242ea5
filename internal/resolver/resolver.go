package resolver

import (
	"context"
	"fmt"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/suffix"
)

// Defaults applied when a Request leaves a setting empty.
const (
	DefaultField       = "name"
	DefaultMaxAttempts = 10
)

// Policy holds the per-call settings that select and bound the algorithm.
type Policy struct {
	// Format is the suffix template. Empty means suffix.Default.
	Format string

	// Generator selects a custom generator. The zero value uses the
	// default suffix algorithm.
	Generator Generator

	// MaxAttempts bounds the custom generator. Zero means
	// DefaultMaxAttempts; negative is a configuration error.
	MaxAttempts int
}

// Request is the input to one resolution. It is a value object: Resolve never
// modifies it.
type Request struct {
	// Field is the unique field. Empty means DefaultField.
	Field string

	// Value is the candidate, already trimmed/normalized by the caller.
	Value string

	// Scope partitions uniqueness. Empty means global.
	Scope attr.Scope

	// ExcludeID is the id of the record being updated, so it never
	// conflicts with itself. Empty on insert.
	ExcludeID string

	// IncludeTrashed makes soft-deleted records count as conflicts.
	IncludeTrashed bool

	// Policy selects the suffix format or generator.
	Policy Policy
}

// Resolver computes unique values against a Store.
//
// A Resolver holds no per-request state and is safe for concurrent use as long
// as its Store and Tracer are.
type Resolver struct {
	store    Store
	registry *Registry
	tracer   Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry sets the registry used to look up named generators.
func WithRegistry(reg *Registry) Option {
	return func(r *Resolver) { r.registry = reg }
}

// WithTracer sets a tracer that receives every resolution step.
func WithTracer(t Tracer) Option {
	return func(r *Resolver) { r.tracer = t }
}

// New creates a Resolver over store.
func New(store Store, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// plan is the validated form of a Policy.
type plan struct {
	format      *suffix.Format
	generate    GenerateFunc
	maxAttempts int
}

// Resolve returns req.Value when it is free in req.Scope, otherwise a
// rewritten value that is free at the moment of the last store query.
//
// Configuration is validated before any store query, so a bad suffix format
// or generator fails even when the candidate happens to be free.
//
// Errors are always *Error: ErrCodeConfig, ErrCodeGenerator or ErrCodeStore.
// No path returns a value that was not verified against the store.
func (r *Resolver) Resolve(ctx context.Context, req Request) (string, error) {
	if req.Field == "" {
		req.Field = DefaultField
	}

	p, err := r.plan(req.Policy)
	if err != nil {
		err.Field, err.Value = req.Field, req.Value
		return "", err
	}

	filter := Filter{
		Field:          req.Field,
		Scope:          req.Scope,
		ExcludeID:      req.ExcludeID,
		IncludeTrashed: req.IncludeTrashed,
	}

	taken, err2 := r.exists(ctx, filter, req.Value)
	if err2 != nil {
		return "", err2
	}
	if !taken {
		r.trace(Event{Kind: EventFree, Field: req.Field, Value: req.Value})
		r.trace(Event{Kind: EventResolved, Field: req.Field, Value: req.Value})
		return req.Value, nil
	}
	r.trace(Event{Kind: EventTaken, Field: req.Field, Value: req.Value, Taken: true})

	if p.generate != nil {
		return r.resolveWithGenerator(ctx, req, filter, p)
	}
	return r.resolveWithSuffix(ctx, req, filter, p.format)
}

func (r *Resolver) plan(pol Policy) (plan, *Error) {
	generate, err := pol.Generator.bind(r.registry)
	if err != nil {
		return plan{}, err
	}

	p := plan{generate: generate, maxAttempts: pol.MaxAttempts}
	if p.maxAttempts == 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	if p.maxAttempts < 0 {
		return plan{}, NewConfigError(fmt.Sprintf("max attempts must be positive, got %d", pol.MaxAttempts), nil)
	}

	if generate != nil {
		return p, nil
	}

	template := pol.Format
	if template == "" {
		template = suffix.Default
	}
	f, ferr := suffix.Parse(template)
	if ferr != nil {
		return plan{}, NewConfigError("invalid suffix format", ferr)
	}
	p.format = f
	return p, nil
}

// resolveWithGenerator calls the generator for attempts 0..max-1 and returns
// the first value not taken. Exactly max values are checked before giving up.
func (r *Resolver) resolveWithGenerator(ctx context.Context, req Request, filter Filter, p plan) (string, error) {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		value, err := p.generate(req.Value, req.Scope, attempt)
		if err != nil {
			return "", &Error{
				Code:    ErrCodeGenerator,
				Message: fmt.Sprintf("generator failed on attempt %d", attempt),
				Field:   req.Field,
				Value:   req.Value,
				Err:     err,
			}
		}

		taken, serr := r.exists(ctx, filter, value)
		if serr != nil {
			return "", serr
		}
		r.trace(Event{Kind: EventAttempt, Field: req.Field, Value: value, Attempt: attempt, Taken: taken})
		if !taken {
			r.trace(Event{Kind: EventResolved, Field: req.Field, Value: value, Attempt: attempt})
			return value, nil
		}
	}

	return "", NewAttemptsError(req.Field, req.Value, p.maxAttempts)
}

// resolveWithSuffix runs the default algorithm: strip the candidate's own
// suffix, scan once for the base and its suffixed siblings, continue after
// the highest number observed, then re-check until free.
func (r *Resolver) resolveWithSuffix(ctx context.Context, req Request, filter Filter, f *suffix.Format) (string, error) {
	base := f.Base(req.Value)

	values, err := r.store.FetchValues(ctx, filter, ExactOrPrefix{
		Exact:  base,
		Prefix: base + f.Separator(),
	})
	if err != nil {
		return "", newStoreError(req.Field, req.Value, err)
	}

	// The base itself occupies number 0; max starts there.
	highest := 0
	for _, v := range values {
		if v == base {
			continue
		}
		if _, n, ok := f.Decode(v); ok && n > highest {
			highest = n
		}
	}
	r.trace(Event{Kind: EventScan, Field: req.Field, Value: base, Number: highest})

	for next := highest + 1; ; next++ {
		candidate := f.Apply(base, next)
		taken, serr := r.exists(ctx, filter, candidate)
		if serr != nil {
			return "", serr
		}
		r.trace(Event{Kind: EventRecheck, Field: req.Field, Value: candidate, Number: next, Taken: taken})
		if !taken {
			r.trace(Event{Kind: EventResolved, Field: req.Field, Value: candidate, Number: next})
			return candidate, nil
		}
	}
}

func (r *Resolver) exists(ctx context.Context, filter Filter, value string) (bool, *Error) {
	n, err := r.store.CountMatching(ctx, filter, value)
	if err != nil {
		return false, newStoreError(filter.Field, value, err)
	}
	return n > 0, nil
}

func (r *Resolver) trace(e Event) {
	if r.tracer != nil {
		r.tracer.Trace(e)
	}
}
