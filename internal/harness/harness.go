package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/records"
	"github.com/roach88/uniqname/internal/resolver"
	"github.com/roach88/uniqname/internal/store"
	"github.com/roach88/uniqname/internal/testutil"
)

// Error codes recorded for failed steps besides the resolver's own codes.
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeNotTrashed = "NOT_TRASHED"
	ErrCodeConflict   = "UNIQUE_VIOLATION"
	ErrCodeOther      = "ERROR"
)

// Harness executes scenario steps against one repository.
type Harness struct {
	store    *store.Store
	repo     *records.Repository
	recorder *resolver.Recorder
	entity   string

	refs     map[string]string
	refOf    map[string]string
	entities []string
}

// Run executes a scenario in a fresh in-memory store and returns the
// result. Step failures are recorded in the trace; only setup problems are
// returned as errors.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.LoadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	recorder := &resolver.Recorder{}
	ids := testutil.NewFixedIDs()
	repo, err := records.New(ctx, st, cfg,
		records.WithClock(testutil.NewDeterministicClock()),
		records.WithIDs(ids.Next),
		records.WithTracer(recorder),
	)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:    st,
		repo:     repo,
		recorder: recorder,
		entity:   scenario.Entity,
		refs:     map[string]string{},
		refOf:    map[string]string{},
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		trace := h.execute(ctx, i+1, step)
		result.Trace = append(result.Trace, trace)
		checkExpect(result, trace, step.Expect)
	}

	if err := h.collectState(ctx, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, scenario.Entity) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) execute(ctx context.Context, n int, step Step) StepTrace {
	h.recorder.Reset()
	trace := StepTrace{Step: n, Op: step.Op, Ref: step.Ref}

	value, err := h.apply(ctx, step)
	if err != nil {
		trace.Error = ErrorCode(err)
	} else {
		trace.Value = value
	}

	trace.Events = append([]resolver.Event{}, h.recorder.Events...)
	return trace
}

func (h *Harness) apply(ctx context.Context, step Step) (string, error) {
	entity := step.Entity
	if entity == "" {
		entity = h.entity
	}

	attrs, err := attr.ObjectFromMap(step.Attrs)
	if err != nil {
		return "", err
	}

	switch step.Op {
	case OpCreate:
		h.touch(entity)
		rec, err := h.repo.Create(ctx, entity, attrs)
		if err != nil {
			return "", err
		}
		if step.Ref != "" {
			h.refs[step.Ref] = rec.ID
			h.refOf[rec.ID] = step.Ref
		}
		return rec.UniqueValue, nil
	case OpUpdate:
		rec, err := h.repo.Update(ctx, h.refs[step.Ref], attrs)
		if err != nil {
			return "", err
		}
		return rec.UniqueValue, nil
	case OpDelete:
		return "", h.repo.Delete(ctx, h.refs[step.Ref])
	case OpRestore:
		rec, err := h.repo.Restore(ctx, h.refs[step.Ref])
		if err != nil {
			return "", err
		}
		return rec.UniqueValue, nil
	case OpResolve:
		return h.repo.Resolve(ctx, entity, attrs, h.refs[step.Ref])
	default:
		return "", fmt.Errorf("unknown op %q", step.Op)
	}
}

func (h *Harness) touch(entity string) {
	for _, e := range h.entities {
		if e == entity {
			return
		}
	}
	h.entities = append(h.entities, entity)
}

func (h *Harness) collectState(ctx context.Context, result *Result) error {
	for _, entity := range h.entities {
		recs, err := h.store.List(ctx, entity, store.ListOptions{IncludeTrashed: true})
		if err != nil {
			return fmt.Errorf("collect state: %w", err)
		}
		for _, rec := range recs {
			result.State = append(result.State, RecordState{
				Entity:  rec.Entity,
				ID:      rec.ID,
				Ref:     h.refOf[rec.ID],
				Value:   rec.UniqueValue,
				Trashed: rec.Trashed(),
			})
		}
	}
	return nil
}

// ErrorCode maps a step error to the code scenarios expect.
func ErrorCode(err error) string {
	var rerr *resolver.Error
	switch {
	case errors.As(err, &rerr):
		return string(rerr.Code)
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, records.ErrNotTrashed):
		return ErrCodeNotTrashed
	case store.IsUniqueViolation(err):
		return ErrCodeConflict
	default:
		return ErrCodeOther
	}
}

func checkExpect(result *Result, trace StepTrace, expect *Expect) {
	if expect == nil {
		if trace.Error != "" {
			result.AddError(fmt.Sprintf("step %d (%s): unexpected error %s", trace.Step, trace.Op, trace.Error))
		}
		return
	}
	if expect.Error != "" {
		if trace.Error != expect.Error {
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %q", trace.Step, trace.Op, expect.Error, trace.Error))
		}
		return
	}
	if trace.Error != "" {
		result.AddError(fmt.Sprintf("step %d (%s): unexpected error %s", trace.Step, trace.Op, trace.Error))
		return
	}
	if expect.Value != nil && trace.Value != *expect.Value {
		result.AddError(fmt.Sprintf("step %d (%s): expected value %q, got %q", trace.Step, trace.Op, *expect.Value, trace.Value))
	}
}
