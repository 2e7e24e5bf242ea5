package resolver

import (
	"context"
	"strings"

	"github.com/roach88/uniqname/internal/attr"
)

// memRow is one record in memStore.
type memRow struct {
	id      string
	value   string
	scope   attr.Object
	trashed bool
}

// memStore is an in-memory Store for resolver tests. It counts calls and can
// be told to fail or to return a stale batch scan.
type memStore struct {
	rows []memRow

	counts  int
	fetches int
	filters []Filter

	countErr error
	fetchErr error

	// stale, when non-nil, is returned by FetchValues instead of the real
	// result, simulating a scan that missed concurrent inserts.
	stale []string
}

func (m *memStore) add(id, value string, scope attr.Scope) {
	m.rows = append(m.rows, memRow{id: id, value: value, scope: scope.Object()})
}

func (m *memStore) addTrashed(id, value string, scope attr.Scope) {
	m.rows = append(m.rows, memRow{id: id, value: value, scope: scope.Object(), trashed: true})
}

func (m *memStore) matches(row memRow, f Filter) bool {
	if row.trashed && !f.IncludeTrashed {
		return false
	}
	if f.ExcludeID != "" && row.id == f.ExcludeID {
		return false
	}
	for _, p := range f.Scope {
		if !attr.Equal(row.scope.Get(p.Field), p.Value) {
			return false
		}
	}
	return true
}

func (m *memStore) CountMatching(_ context.Context, f Filter, value string) (int, error) {
	m.counts++
	m.filters = append(m.filters, f)
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, row := range m.rows {
		if m.matches(row, f) && row.value == value {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FetchValues(_ context.Context, f Filter, p ExactOrPrefix) ([]string, error) {
	m.fetches++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if m.stale != nil {
		return m.stale, nil
	}
	var out []string
	for _, row := range m.rows {
		if !m.matches(row, f) {
			continue
		}
		if row.value == p.Exact || strings.HasPrefix(row.value, p.Prefix) {
			out = append(out, row.value)
		}
	}
	return out, nil
}

// insert resolves value and stores the result, like a create hook would.
func (m *memStore) insert(r *Resolver, id, value string, scope attr.Scope) (string, error) {
	got, err := r.Resolve(context.Background(), Request{Value: value, Scope: scope})
	if err != nil {
		return "", err
	}
	m.add(id, got, scope)
	return got, nil
}
