package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/queryir"
	"github.com/roach88/uniqname/internal/querysql"
	"github.com/roach88/uniqname/internal/resolver"
)

// Table is a Store view bound to one entity. It implements resolver.Store.
type Table struct {
	store       *Store
	entity      string
	uniqueField string
	compiler    *querysql.SQLCompiler
}

var _ resolver.Store = (*Table)(nil)

// Table returns a resolver.Store over one entity whose unique values live in
// uniqueField.
//
// Lookups on uniqueField read the indexed unique_value column. Lookups on any
// other field fall back to json_extract over attrs.
func (s *Store) Table(entity, uniqueField string) *Table {
	return &Table{
		store:       s,
		entity:      entity,
		uniqueField: uniqueField,
		compiler:    querysql.NewSQLCompiler(),
	}
}

// Entity returns the bound entity name.
func (t *Table) Entity() string { return t.entity }

// CountMatching implements resolver.Store.
func (t *Table) CountMatching(ctx context.Context, f resolver.Filter, value string) (int, error) {
	ref, preds := t.filter(f)
	preds = append(preds, queryir.Equals{Field: ref, Value: attr.String(value)})

	sqlText, params, err := t.compiler.Compile(queryir.Count{
		From:   recordsTable,
		Filter: queryir.Conj(preds...),
	})
	if err != nil {
		return 0, fmt.Errorf("count %s.%s: %w", t.entity, f.Field, err)
	}

	var n int
	if err := t.store.db.QueryRowContext(ctx, sqlText, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s.%s: %w", t.entity, f.Field, err)
	}
	return n, nil
}

// FetchValues implements resolver.Store.
func (t *Table) FetchValues(ctx context.Context, f resolver.Filter, p resolver.ExactOrPrefix) ([]string, error) {
	ref, preds := t.filter(f)
	preds = append(preds, queryir.Or{Predicates: []queryir.Predicate{
		queryir.Equals{Field: ref, Value: attr.String(p.Exact)},
		queryir.HasPrefix{Field: ref, Prefix: p.Prefix},
	}})

	sqlText, params, err := t.compiler.Compile(queryir.Select{
		From:   recordsTable,
		Fields: []queryir.Field{ref},
		Filter: queryir.Conj(preds...),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s.%s: %w", t.entity, f.Field, err)
	}

	rows, err := t.store.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s.%s: %w", t.entity, f.Field, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("fetch %s.%s: scan: %w", t.entity, f.Field, err)
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s.%s: iterate: %w", t.entity, f.Field, err)
	}
	return values, nil
}

// filter builds the shared predicates for a lookup and returns the field
// reference to compare values against.
func (t *Table) filter(f resolver.Filter) (queryir.Field, []queryir.Predicate) {
	preds := []queryir.Predicate{
		queryir.Equals{Field: queryir.Column("entity"), Value: attr.String(t.entity)},
	}

	ref := queryir.Attr(f.Field)
	if f.Field == t.uniqueField {
		ref = queryir.Column("unique_value")
		preds = append(preds, queryir.Equals{Field: queryir.Column("unique_field"), Value: attr.String(t.uniqueField)})
	}

	preds = append(preds, scopePredicates(f.Scope)...)
	if f.ExcludeID != "" {
		preds = append(preds, queryir.NotEquals{Field: queryir.Column("id"), Value: attr.String(f.ExcludeID)})
	}
	if !f.IncludeTrashed {
		preds = append(preds, queryir.IsNull{Field: queryir.Column("deleted_at")})
	}
	return ref, preds
}
