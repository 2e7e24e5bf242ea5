package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Insert writes a new record.
//
// Unlike an append-only log, a duplicate id or a live name collision is an
// error: both surface as *sqlite3.Error wrapped with %w. Use
// IsUniqueViolation to detect a lost resolution race.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	attrsJSON, err := marshalAttrs(rec.Attrs)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records
		(id, entity, seq, unique_field, unique_value, scope_key, attrs, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Entity,
		rec.Seq,
		rec.UniqueField,
		rec.UniqueValue,
		rec.ScopeKey,
		attrsJSON,
		nullableSeq(rec.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}

	return nil
}

// Update overwrites a record's attributes and derived columns.
// The record keeps its trashed state. Returns ErrNotFound for unknown ids.
func (s *Store) Update(ctx context.Context, rec Record) error {
	attrsJSON, err := marshalAttrs(rec.Attrs)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET seq = ?, unique_field = ?, unique_value = ?, scope_key = ?, attrs = ?
		WHERE id = ?
	`,
		rec.Seq,
		rec.UniqueField,
		rec.UniqueValue,
		rec.ScopeKey,
		attrsJSON,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update record %s: %w", rec.ID, err)
	}
	return expectOneRow(res, "update record", rec.ID)
}

// SoftDelete marks a live record deleted at the given seq.
// Returns ErrNotFound if the record does not exist or is already trashed.
func (s *Store) SoftDelete(ctx context.Context, id string, seq int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE records SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
	`, seq, id)
	if err != nil {
		return fmt.Errorf("soft delete record %s: %w", id, err)
	}
	return expectOneRow(res, "soft delete record", id)
}

// Restore brings a trashed record back, writing rec's attributes in the same
// statement so a rename needed to avoid a live collision is applied
// atomically. Returns ErrNotFound if the record is not trashed.
func (s *Store) Restore(ctx context.Context, rec Record) error {
	attrsJSON, err := marshalAttrs(rec.Attrs)
	if err != nil {
		return fmt.Errorf("restore record: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET deleted_at = NULL, seq = ?, unique_field = ?, unique_value = ?, scope_key = ?, attrs = ?
		WHERE id = ? AND deleted_at IS NOT NULL
	`,
		rec.Seq,
		rec.UniqueField,
		rec.UniqueValue,
		rec.ScopeKey,
		attrsJSON,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("restore record %s: %w", rec.ID, err)
	}
	return expectOneRow(res, "restore record", rec.ID)
}

// HardDelete removes a record permanently, trashed or not.
func (s *Store) HardDelete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return expectOneRow(res, "delete record", id)
}

// IsUniqueViolation reports whether err came from the live-uniqueness index.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOneRow(res rowsAffecter, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

func nullableSeq(seq int64) any {
	if seq == 0 {
		return nil
	}
	return seq
}
