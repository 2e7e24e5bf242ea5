package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/resolver"
)

// Snapshot renders a result as canonical JSON lines: a header, one line per
// step, then one line per record.
func Snapshot(name string, result *Result) ([]byte, error) {
	var buf bytes.Buffer
	write := func(v map[string]any) error {
		line, err := attr.MarshalCanonical(v)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
		return nil
	}

	if err := write(map[string]any{"scenario": name}); err != nil {
		return nil, err
	}
	for _, st := range result.Trace {
		if err := write(stepMap(st)); err != nil {
			return nil, err
		}
	}
	for _, rec := range result.State {
		if err := write(stateMap(rec)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func stepMap(st StepTrace) map[string]any {
	events := make([]any, len(st.Events))
	for i, e := range st.Events {
		events[i] = eventMap(e)
	}
	m := map[string]any{
		"step":   st.Step,
		"op":     st.Op,
		"events": events,
	}
	if st.Ref != "" {
		m["ref"] = st.Ref
	}
	if st.Error != "" {
		m["error"] = st.Error
	} else if st.Value != "" {
		m["value"] = st.Value
	}
	return m
}

// eventMap keeps only the fields meaningful for each kind.
func eventMap(e resolver.Event) map[string]any {
	m := map[string]any{
		"kind":  string(e.Kind),
		"value": e.Value,
	}
	switch e.Kind {
	case resolver.EventAttempt:
		m["attempt"] = e.Attempt
		m["taken"] = e.Taken
	case resolver.EventScan:
		m["number"] = e.Number
	case resolver.EventRecheck:
		m["number"] = e.Number
		m["taken"] = e.Taken
	}
	return m
}

func stateMap(rec RecordState) map[string]any {
	m := map[string]any{
		"entity":  rec.Entity,
		"id":      rec.ID,
		"value":   rec.Value,
		"trashed": rec.Trashed,
	}
	if rec.Ref != "" {
		m["ref"] = rec.Ref
	}
	return m
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
