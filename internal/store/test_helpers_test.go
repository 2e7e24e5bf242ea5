package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/uniqname/internal/attr"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord builds a record in entity "items" whose unique field is
// "name", scoped by scopeFields.
func createTestRecord(t *testing.T, id string, seq int64, attrs attr.Object, scopeFields ...string) Record {
	t.Helper()
	rec := Record{ID: id, Entity: "items", Seq: seq, Attrs: attrs}
	if err := rec.Derive("name", scopeFields); err != nil {
		t.Fatalf("Derive() failed: %v", err)
	}
	return rec
}

// mustInsert inserts a record or fails the test.
func mustInsert(t *testing.T, s *Store, rec Record) {
	t.Helper()
	if err := s.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert(%s) failed: %v", rec.ID, err)
	}
}
