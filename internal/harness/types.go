package harness

import "github.com/roach88/uniqname/internal/resolver"

// StepTrace is the recorded outcome of one step.
type StepTrace struct {
	Step   int              `json:"step"`
	Op     string           `json:"op"`
	Ref    string           `json:"ref,omitempty"`
	Value  string           `json:"value,omitempty"`
	Error  string           `json:"error,omitempty"`
	Events []resolver.Event `json:"events"`
}

// RecordState is one record at the end of a run.
type RecordState struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Ref     string `json:"ref,omitempty"`
	Value   string `json:"value"`
	Trashed bool   `json:"trashed"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one entry per step, in order.
	Trace []StepTrace `json:"trace"`

	// State lists every record, trashed ones included, per entity in
	// first-touched order and then write order.
	State []RecordState `json:"state"`

	// Errors contains validation error messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		State:  []RecordState{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns every resolver event of the run in order.
func (r *Result) Events() []resolver.Event {
	var all []resolver.Event
	for _, st := range r.Trace {
		all = append(all, st.Events...)
	}
	return all
}
