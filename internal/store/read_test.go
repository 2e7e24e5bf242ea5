package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/uniqname/internal/attr"
)

func TestGet_RoundTripsAttrs(t *testing.T) {
	s := createTestStore(t)

	rec := createTestRecord(t, "r1", 5, attr.Object{
		"name":   attr.String("Café (1)"),
		"org_id": attr.Int(9007199254740993),
		"team":   attr.Null{},
	}, "org_id", "team")
	mustInsert(t, s, rec)

	got, err := s.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if got.Entity != "items" || got.Seq != 5 || got.UniqueField != "name" {
		t.Errorf("got %+v", got)
	}
	if got.ScopeKey != rec.ScopeKey {
		t.Errorf("ScopeKey = %s, want %s", got.ScopeKey, rec.ScopeKey)
	}
	if !attr.Equal(got.Attrs.Get("org_id"), attr.Int(9007199254740993)) {
		t.Errorf("org_id = %v, large integer lost precision", got.Attrs.Get("org_id"))
	}
	if !attr.IsNull(got.Attrs.Get("team")) {
		t.Errorf("team = %v, want null", got.Attrs.Get("team"))
	}
	if got.Trashed() {
		t.Error("new record reported trashed")
	}
}

func TestGet_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestList_DeterministicOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Same seq: id breaks the tie.
	mustInsert(t, s, createTestRecord(t, "b", 2, attr.Object{"name": attr.String("B")}))
	mustInsert(t, s, createTestRecord(t, "a", 2, attr.Object{"name": attr.String("A")}))
	mustInsert(t, s, createTestRecord(t, "c", 1, attr.Object{"name": attr.String("C")}))

	got, err := s.List(ctx, "items", ListOptions{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestList_FiltersTrashedAndScope(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("A"), "org_id": attr.Int(1)}, "org_id"))
	mustInsert(t, s, createTestRecord(t, "r2", 2, attr.Object{"name": attr.String("B"), "org_id": attr.Int(2)}, "org_id"))
	mustInsert(t, s, createTestRecord(t, "r3", 3, attr.Object{"name": attr.String("C"), "org_id": attr.Int(1)}, "org_id"))
	if err := s.SoftDelete(ctx, "r3", 4); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}

	live, err := s.List(ctx, "items", ListOptions{Scope: attr.Scope{attr.P("org_id", attr.Int(1))}})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(live) != 1 || live[0].ID != "r1" {
		t.Errorf("live scoped List() = %v, want [r1]", ids(live))
	}

	all, err := s.List(ctx, "items", ListOptions{Scope: attr.Scope{attr.P("org_id", attr.Int(1))}, IncludeTrashed: true})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(IncludeTrashed) = %v, want [r1 r3]", ids(all))
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.List(context.Background(), "nothing", ListOptions{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if got == nil {
		t.Error("List() returned nil, want empty slice")
	}
}

func TestMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("MaxSeq() on empty store = %d, want 0", seq)
	}

	mustInsert(t, s, createTestRecord(t, "r1", 7, attr.Object{"name": attr.String("A")}))
	mustInsert(t, s, createTestRecord(t, "r2", 3, attr.Object{"name": attr.String("B")}))

	seq, err = s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 7 {
		t.Errorf("MaxSeq() = %d, want 7", seq)
	}
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
