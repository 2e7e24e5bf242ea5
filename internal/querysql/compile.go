// Package querysql compiles queryir trees to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/queryir"
)

// AttrColumn is the JSON column holding record attributes.
const AttrColumn = "attrs"

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// Values are always bound as ? parameters, never interpolated. Identifiers
// are interpolated only after queryir.Validate accepts them.
// Every Select ends with ORDER BY seq ASC, id ASC COLLATE BINARY so results
// are deterministic.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query to (sql, params).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Count:
		return c.compileCount(query)
	case *queryir.Count:
		return c.compileCount(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	cols := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		if f.Attr {
			cols[i] = fieldExpr(f) + " AS " + f.Name
			continue
		}
		cols[i] = f.Name
	}

	where, params, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY seq ASC, id ASC COLLATE BINARY",
		strings.Join(cols, ", "), q.From, where)
	return sql, params, nil
}

func (c *SQLCompiler) compileCount(q queryir.Count) (string, []any, error) {
	where, params, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.From, where), params, nil
}

func (c *SQLCompiler) compileWhere(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	sql, params, err := c.compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		// IS is SQLite's null-safe equality: NULL IS NULL is true.
		return fieldExpr(pred.Field) + " IS ?", []any{param(pred.Value)}, nil
	case *queryir.Equals:
		return c.compilePredicate(*pred)
	case queryir.NotEquals:
		return fieldExpr(pred.Field) + " IS NOT ?", []any{param(pred.Value)}, nil
	case *queryir.NotEquals:
		return c.compilePredicate(*pred)
	case queryir.IsNull:
		return fieldExpr(pred.Field) + " IS NULL", nil, nil
	case *queryir.IsNull:
		return c.compilePredicate(*pred)
	case queryir.HasPrefix:
		return c.compilePrefix(pred)
	case *queryir.HasPrefix:
		return c.compilePrefix(*pred)
	case queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case *queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	case *queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compilePrefix uses substr rather than LIKE: LIKE is case-insensitive for
// ASCII in SQLite and treats % and _ as wildcards, both wrong for names.
// substr counts characters, so the length parameter is the prefix's rune
// count.
func (c *SQLCompiler) compilePrefix(p queryir.HasPrefix) (string, []any, error) {
	sql := fmt.Sprintf("substr(%s, 1, ?) = ?", fieldExpr(p.Field))
	return sql, []any{int64(utf8.RuneCountInString(p.Prefix)), p.Prefix}, nil
}

func (c *SQLCompiler) compileJunction(preds []queryir.Predicate, op, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(preds))
	var params []any
	for _, pred := range preds {
		sql, ps, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}

	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, op) + ")", params, nil
}

// fieldExpr renders a field reference. Names are validated identifiers.
func fieldExpr(f queryir.Field) string {
	if f.Attr {
		return fmt.Sprintf("json_extract(%s, '$.%s')", AttrColumn, f.Name)
	}
	return f.Name
}

// param converts an attribute value to a driver parameter.
// Null (and nil) bind as SQL NULL.
func param(v attr.Value) any {
	return attr.Native(v)
}
