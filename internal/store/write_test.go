package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/uniqname/internal/attr"
)

func TestInsert_StoresCanonicalAttrs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRecord(t, "r1", 1, attr.Object{
		"name":   attr.String("Foo"),
		"org_id": attr.Int(7),
		"active": attr.Bool(true),
	}, "org_id")
	mustInsert(t, s, rec)

	var attrsJSON, uniqueValue, scopeKey string
	err := s.db.QueryRowContext(ctx,
		`SELECT attrs, unique_value, scope_key FROM records WHERE id = ?`, "r1",
	).Scan(&attrsJSON, &uniqueValue, &scopeKey)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if want := `{"active":true,"name":"Foo","org_id":7}`; attrsJSON != want {
		t.Errorf("attrs = %s, want %s", attrsJSON, want)
	}
	if uniqueValue != "Foo" {
		t.Errorf("unique_value = %q, want %q", uniqueValue, "Foo")
	}
	if scopeKey != rec.ScopeKey || scopeKey == "" {
		t.Errorf("scope_key = %q, want %q", scopeKey, rec.ScopeKey)
	}
}

func TestInsert_LiveDuplicateIsUniqueViolation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("Foo")}))

	err := s.Insert(ctx, createTestRecord(t, "r2", 2, attr.Object{"name": attr.String("Foo")}))
	if err == nil {
		t.Fatal("Insert() of live duplicate succeeded, want constraint error")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestInsert_DuplicateAllowedAcrossScopes(t *testing.T) {
	s := createTestStore(t)

	mustInsert(t, s, createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("Foo"), "org_id": attr.Int(1)}, "org_id"))
	mustInsert(t, s, createTestRecord(t, "r2", 2, attr.Object{"name": attr.String("Foo"), "org_id": attr.Int(2)}, "org_id"))
}

func TestInsert_DuplicateAllowedWhenTrashed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("Foo")}))
	if err := s.SoftDelete(ctx, "r1", 2); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}

	mustInsert(t, s, createTestRecord(t, "r2", 3, attr.Object{"name": attr.String("Foo")}))
}

func TestUpdate_RewritesDerivedColumns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("Foo")}))

	rec := createTestRecord(t, "r1", 2, attr.Object{"name": attr.String("Bar")})
	if err := s.Update(ctx, rec); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.UniqueValue != "Bar" || got.Seq != 2 {
		t.Errorf("got (%q, seq %d), want (\"Bar\", seq 2)", got.UniqueValue, got.Seq)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	s := createTestStore(t)

	err := s.Update(context.Background(), createTestRecord(t, "missing", 1, attr.Object{"name": attr.String("Foo")}))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestSoftDelete_AndRestore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("Foo")})
	mustInsert(t, s, rec)

	if err := s.SoftDelete(ctx, "r1", 2); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}
	if err := s.SoftDelete(ctx, "r1", 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("second SoftDelete() error = %v, want ErrNotFound", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !got.Trashed() || got.DeletedAt != 2 {
		t.Errorf("DeletedAt = %d, want 2", got.DeletedAt)
	}

	restored := createTestRecord(t, "r1", 4, attr.Object{"name": attr.String("Foo (1)")})
	if err := s.Restore(ctx, restored); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	got, err = s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Trashed() {
		t.Error("record still trashed after Restore()")
	}
	if got.UniqueValue != "Foo (1)" {
		t.Errorf("UniqueValue = %q, want %q", got.UniqueValue, "Foo (1)")
	}

	if err := s.Restore(ctx, restored); !errors.Is(err, ErrNotFound) {
		t.Errorf("Restore() of live record error = %v, want ErrNotFound", err)
	}
}

func TestRestore_LiveCollisionIsUniqueViolation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("Foo")}))
	if err := s.SoftDelete(ctx, "r1", 2); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}
	mustInsert(t, s, createTestRecord(t, "r2", 3, attr.Object{"name": attr.String("Foo")}))

	err := s.Restore(ctx, createTestRecord(t, "r1", 4, attr.Object{"name": attr.String("Foo")}))
	if !IsUniqueViolation(err) {
		t.Errorf("Restore() error = %v, want unique violation", err)
	}
}

func TestHardDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, createTestRecord(t, "r1", 1, attr.Object{"name": attr.String("Foo")}))

	if err := s.HardDelete(ctx, "r1"); err != nil {
		t.Fatalf("HardDelete() failed: %v", err)
	}
	if _, err := s.Get(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after HardDelete error = %v, want ErrNotFound", err)
	}
	if err := s.HardDelete(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second HardDelete() error = %v, want ErrNotFound", err)
	}
}

func TestIsUniqueViolation_OtherErrors(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Error("IsUniqueViolation(nil) = true")
	}
	if IsUniqueViolation(ErrNotFound) {
		t.Error("IsUniqueViolation(ErrNotFound) = true")
	}
}

func TestDerive_RequiresStringUniqueField(t *testing.T) {
	rec := Record{ID: "r1", Attrs: attr.Object{"name": attr.Int(3)}}
	if err := rec.Derive("name", nil); err == nil {
		t.Error("Derive() with int name succeeded, want error")
	}

	rec = Record{ID: "r1", Attrs: attr.Object{}}
	if err := rec.Derive("name", nil); err == nil {
		t.Error("Derive() with missing name succeeded, want error")
	}
}

func TestDerive_MissingScopeFieldIsNull(t *testing.T) {
	a := Record{Attrs: attr.Object{"name": attr.String("Foo")}}
	b := Record{Attrs: attr.Object{"name": attr.String("Foo"), "org_id": attr.Null{}}}

	if err := a.Derive("name", []string{"org_id"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Derive("name", []string{"org_id"}); err != nil {
		t.Fatal(err)
	}
	if a.ScopeKey != b.ScopeKey {
		t.Errorf("missing and null scope keys differ: %s vs %s", a.ScopeKey, b.ScopeKey)
	}
}
