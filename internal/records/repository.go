package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/config"
	"github.com/roach88/uniqname/internal/generators"
	"github.com/roach88/uniqname/internal/resolver"
	"github.com/roach88/uniqname/internal/store"
)

// DefaultRetries bounds re-resolution after a lost write race.
const DefaultRetries = 3

// ErrNotTrashed is returned when restoring a live record.
var ErrNotTrashed = errors.New("record is not trashed")

// Repository creates, renames, deletes and restores records while keeping
// each entity's unique field unique.
type Repository struct {
	store    *store.Store
	cfg      *config.Config
	registry *resolver.Registry
	clock    SeqSource
	ids      generators.IDSource
	tracer   resolver.Tracer
	retries  int
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the logical clock. Tests pass a
// testutil.DeterministicClock.
func WithClock(c SeqSource) Option {
	return func(r *Repository) { r.clock = c }
}

// WithIDs replaces the record id source (UUIDv7 by default). The same source
// feeds the uuid generator.
func WithIDs(ids generators.IDSource) Option {
	return func(r *Repository) { r.ids = ids }
}

// WithRegistry replaces the named-generator registry (built-ins by default).
func WithRegistry(reg *resolver.Registry) Option {
	return func(r *Repository) { r.registry = reg }
}

// WithTracer receives the resolver's events for every resolution.
func WithTracer(t resolver.Tracer) Option {
	return func(r *Repository) { r.tracer = t }
}

// WithRetries sets how many times a write is re-resolved after a unique
// constraint violation. Zero disables retries.
func WithRetries(n int) Option {
	return func(r *Repository) { r.retries = n }
}

// New creates a Repository. Unless WithClock is given, the clock resumes after
// the store's highest seq.
func New(ctx context.Context, s *store.Store, cfg *config.Config, opts ...Option) (*Repository, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Repository{
		store:   s,
		cfg:     cfg,
		ids:     generators.UUIDv7Source,
		retries: DefaultRetries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.registry == nil {
		r.registry = generators.NewRegistry(r.ids)
	}
	if r.clock == nil {
		seq, err := s.MaxSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("new repository: %w", err)
		}
		r.clock = NewClockAt(seq)
	}
	return r, nil
}

// Config returns the repository's configuration.
func (r *Repository) Config() *config.Config { return r.cfg }

// Get returns a record by id.
func (r *Repository) Get(ctx context.Context, id string) (store.Record, error) {
	return r.store.Get(ctx, id)
}

// List returns an entity's records in write order.
func (r *Repository) List(ctx context.Context, entity string, opts store.ListOptions) ([]store.Record, error) {
	return r.store.List(ctx, entity, opts)
}

// Resolve previews the value Create would store for attrs without writing.
// A non-empty excludeID previews a rename of that record instead.
func (r *Repository) Resolve(ctx context.Context, entity string, attrs attr.Object, excludeID string) (string, error) {
	settings := r.cfg.For(entity)
	raw, err := uniqueValue(settings, attrs)
	if err != nil {
		return "", err
	}
	return r.resolve(ctx, settings, settings.Prepare(raw), attrs, excludeID)
}

// Create resolves the unique field and inserts a new record.
func (r *Repository) Create(ctx context.Context, entity string, attrs attr.Object) (store.Record, error) {
	settings := r.cfg.For(entity)
	attrs = attrs.Clone()

	raw, err := uniqueValue(settings, attrs)
	if err != nil {
		return store.Record{}, err
	}
	candidate := settings.Prepare(raw)
	id := r.ids()

	for try := 0; ; try++ {
		resolved, err := r.resolve(ctx, settings, candidate, attrs, "")
		if err != nil {
			return store.Record{}, err
		}
		attrs[settings.UniqueField] = attr.String(resolved)

		rec, err := r.record(settings, id, attrs)
		if err != nil {
			return store.Record{}, err
		}
		err = r.store.Insert(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !r.retryable(err, try) {
			return store.Record{}, fmt.Errorf("create %s: %w", entity, err)
		}
	}
}

// Update merges patch into the record's attributes. The unique field is
// re-resolved only when patch changes it; the comparison uses the raw
// incoming value, before trimming.
func (r *Repository) Update(ctx context.Context, id string, patch attr.Object) (store.Record, error) {
	current, err := r.store.Get(ctx, id)
	if err != nil {
		return store.Record{}, err
	}
	settings := r.cfg.For(current.Entity)

	attrs := current.Attrs.Clone()
	for k, v := range patch {
		attrs[k] = v
	}

	raw, err := uniqueValue(settings, attrs)
	if err != nil {
		return store.Record{}, err
	}
	dirty := raw != current.UniqueValue
	candidate := raw
	if dirty {
		candidate = settings.Prepare(raw)
	}

	for try := 0; ; try++ {
		// A constraint violation on a clean name means the scope moved onto
		// a taken value; resolve from then on.
		if dirty || try > 0 {
			resolved, err := r.resolve(ctx, settings, candidate, attrs, id)
			if err != nil {
				return store.Record{}, err
			}
			attrs[settings.UniqueField] = attr.String(resolved)
		}

		rec, err := r.record(settings, id, attrs)
		if err != nil {
			return store.Record{}, err
		}
		rec.DeletedAt = current.DeletedAt
		err = r.store.Update(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !r.retryable(err, try) {
			return store.Record{}, fmt.Errorf("update %s: %w", id, err)
		}
	}
}

// Delete soft-deletes the record, or removes it when its entity has
// soft_deletes disabled.
func (r *Repository) Delete(ctx context.Context, id string) error {
	current, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !r.cfg.For(current.Entity).SoftDeletes {
		return r.store.HardDelete(ctx, id)
	}
	return r.store.SoftDelete(ctx, id, r.clock.Next())
}

// Restore brings a soft-deleted record back. If a live record took its name
// meanwhile, the restored record is renamed like a new one would be.
func (r *Repository) Restore(ctx context.Context, id string) (store.Record, error) {
	current, err := r.store.Get(ctx, id)
	if err != nil {
		return store.Record{}, err
	}
	if !current.Trashed() {
		return store.Record{}, fmt.Errorf("restore %s: %w", id, ErrNotTrashed)
	}
	settings := r.cfg.For(current.Entity)
	attrs := current.Attrs.Clone()

	for try := 0; ; try++ {
		resolved, err := r.resolve(ctx, settings, current.UniqueValue, attrs, id)
		if err != nil {
			return store.Record{}, err
		}
		attrs[settings.UniqueField] = attr.String(resolved)

		rec, err := r.record(settings, id, attrs)
		if err != nil {
			return store.Record{}, err
		}
		err = r.store.Restore(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !r.retryable(err, try) {
			return store.Record{}, fmt.Errorf("restore %s: %w", id, err)
		}
	}
}

// resolve runs the resolver for one candidate under the entity's settings.
func (r *Repository) resolve(ctx context.Context, s config.Settings, candidate string, attrs attr.Object, excludeID string) (string, error) {
	gen, err := generators.FromConfig(s.Generator, r.ids)
	if err != nil {
		return "", err
	}

	res := resolver.New(
		r.store.Table(s.Entity, s.UniqueField),
		resolver.WithRegistry(r.registry),
		resolver.WithTracer(r.tracer),
	)
	return res.Resolve(ctx, resolver.Request{
		Field:          s.UniqueField,
		Value:          candidate,
		Scope:          attr.ScopeOf(attrs, s.ConstraintFields),
		ExcludeID:      excludeID,
		IncludeTrashed: s.IncludeTrashed(),
		Policy: resolver.Policy{
			Format:      s.SuffixFormat,
			Generator:   gen,
			MaxAttempts: s.MaxAttempts,
		},
	})
}

func (r *Repository) record(s config.Settings, id string, attrs attr.Object) (store.Record, error) {
	rec := store.Record{
		ID:     id,
		Entity: s.Entity,
		Seq:    r.clock.Next(),
		Attrs:  attrs.Clone(),
	}
	if err := rec.Derive(s.UniqueField, s.ConstraintFields); err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

func (r *Repository) retryable(err error, try int) bool {
	return store.IsUniqueViolation(err) && try < r.retries
}

// uniqueValue returns the raw unique field value from attrs.
func uniqueValue(s config.Settings, attrs attr.Object) (string, error) {
	v, ok := attrs[s.UniqueField]
	if !ok {
		return "", fmt.Errorf("%s: missing unique field %q", s.Entity, s.UniqueField)
	}
	str, ok := v.(attr.String)
	if !ok {
		return "", fmt.Errorf("%s: unique field %q must be a string, got %s", s.Entity, s.UniqueField, attr.Format(v))
	}
	return string(str), nil
}
