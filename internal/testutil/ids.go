package testutil

import (
	"strconv"
	"sync"
)

// FixedIDs returns predetermined ids in order for deterministic tests.
//
// After the list is consumed it keeps producing "<last>-<n>" so long-running
// scenarios never panic; use Remaining to assert exact consumption.
//
// Thread-safety: FixedIDs is safe for concurrent use via internal mutex.
type FixedIDs struct {
	mu    sync.Mutex
	ids   []string
	idx   int
	extra int
}

// NewFixedIDs creates a source returning ids in order.
// With no ids, it returns "id-1", "id-2", ...
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// Next returns the next id. Its signature matches generators.IDSource.
func (f *FixedIDs) Next() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.idx < len(f.ids) {
		id := f.ids[f.idx]
		f.idx++
		return id
	}

	f.extra++
	if len(f.ids) == 0 {
		return "id-" + strconv.Itoa(f.extra)
	}
	return f.ids[len(f.ids)-1] + "-" + strconv.Itoa(f.extra)
}

// Remaining reports how many predetermined ids are unused.
func (f *FixedIDs) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids) - f.idx
}
