package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/queryir"
	"github.com/roach88/uniqname/internal/querysql"
)

const recordsTable = "records"

var recordColumns = []queryir.Field{
	queryir.Column("id"),
	queryir.Column("entity"),
	queryir.Column("seq"),
	queryir.Column("unique_field"),
	queryir.Column("unique_value"),
	queryir.Column("scope_key"),
	queryir.Column("attrs"),
	queryir.Column("deleted_at"),
}

// Get returns the record with the given id, trashed or not.
// Returns an error wrapping ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, entity, seq, unique_field, unique_value, scope_key, attrs, deleted_at
		FROM records
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Scope restricts results to records whose attributes equal every pair.
	Scope attr.Scope

	// IncludeTrashed also returns soft-deleted records.
	IncludeTrashed bool
}

// List returns an entity's records ordered by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) List(ctx context.Context, entity string, opts ListOptions) ([]Record, error) {
	preds := []queryir.Predicate{
		queryir.Equals{Field: queryir.Column("entity"), Value: attr.String(entity)},
	}
	preds = append(preds, scopePredicates(opts.Scope)...)
	if !opts.IncludeTrashed {
		preds = append(preds, queryir.IsNull{Field: queryir.Column("deleted_at")})
	}

	query := queryir.Select{
		From:   recordsTable,
		Fields: recordColumns,
		Filter: queryir.Conj(preds...),
	}

	sqlText, params, err := querysql.NewSQLCompiler().Compile(query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", entity, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: iterate: %w", entity, err)
	}

	return records, nil
}

// MaxSeq returns the highest seq in the store, or 0 when empty.
// Callers resume their logical clock from it.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM records`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		attrsJSON string
		deletedAt sql.NullInt64
	)
	err := row.Scan(
		&rec.ID,
		&rec.Entity,
		&rec.Seq,
		&rec.UniqueField,
		&rec.UniqueValue,
		&rec.ScopeKey,
		&attrsJSON,
		&deletedAt,
	)
	if err != nil {
		return Record{}, err
	}

	rec.Attrs, err = unmarshalAttrs(attrsJSON)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.DeletedAt = deletedAt.Int64
	return rec, nil
}

// scopePredicates renders a scope as null-safe attribute equalities.
func scopePredicates(scope attr.Scope) []queryir.Predicate {
	preds := make([]queryir.Predicate, 0, len(scope))
	for _, p := range scope {
		value := p.Value
		if value == nil {
			value = attr.Null{}
		}
		preds = append(preds, queryir.Equals{Field: queryir.Attr(p.Field), Value: value})
	}
	return preds
}
