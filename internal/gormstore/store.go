package gormstore

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/resolver"
)

var deletedAtType = reflect.TypeOf(gorm.DeletedAt{})

// Store is a resolver.Store over one GORM model.
type Store struct {
	db     *gorm.DB
	model  any
	schema *schema.Schema
}

var _ resolver.Store = (*Store)(nil)

// New parses model (a struct or pointer to struct) and returns a Store over
// its table. Filter fields may name Go fields or columns.
func New(db *gorm.DB, model any) (*Store, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("gormstore: parse model: %w", err)
	}
	return &Store{
		db:     db,
		model:  reflect.New(stmt.Schema.ModelType).Interface(),
		schema: stmt.Schema,
	}, nil
}

// Table returns the model's table name.
func (s *Store) Table() string { return s.schema.Table }

// SoftDeletes reports whether the model has a gorm.DeletedAt field.
func (s *Store) SoftDeletes() bool {
	for _, f := range s.schema.Fields {
		if f.FieldType == deletedAtType {
			return true
		}
	}
	return false
}

// withDB returns a copy of s querying through db, used by callbacks to stay
// inside the current transaction.
func (s *Store) withDB(db *gorm.DB) *Store {
	c := *s
	c.db = db
	return &c
}

// CountMatching implements resolver.Store.
func (s *Store) CountMatching(ctx context.Context, f resolver.Filter, value string) (int, error) {
	q, col, err := s.query(ctx, f)
	if err != nil {
		return 0, err
	}

	var n int64
	err = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: value}).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count %s.%s: %w", s.schema.Table, col, err)
	}
	return int(n), nil
}

// FetchValues implements resolver.Store. The prefix test uses substr so it is
// case-sensitive and treats % and _ literally.
func (s *Store) FetchValues(ctx context.Context, f resolver.Filter, p resolver.ExactOrPrefix) ([]string, error) {
	q, col, err := s.query(ctx, f)
	if err != nil {
		return nil, err
	}

	column := clause.Column{Name: col}
	q = q.Where(clause.Or(
		clause.Eq{Column: column, Value: p.Exact},
		clause.Expr{SQL: "substr(?, 1, ?) = ?", Vars: []any{column, utf8.RuneCountInString(p.Prefix), p.Prefix}},
	))

	var raw []sql.NullString
	if err := q.Pluck(col, &raw).Error; err != nil {
		return nil, fmt.Errorf("fetch %s.%s: %w", s.schema.Table, col, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v.Valid {
			values = append(values, v.String)
		}
	}
	return values, nil
}

// query builds the scoped base query and resolves the compared column.
func (s *Store) query(ctx context.Context, f resolver.Filter) (*gorm.DB, string, error) {
	col, err := s.column(f.Field)
	if err != nil {
		return nil, "", err
	}

	q := s.db.WithContext(ctx).Model(s.model)
	if f.IncludeTrashed {
		q = q.Unscoped()
	}

	for _, p := range f.Scope {
		c, err := s.column(p.Field)
		if err != nil {
			return nil, "", err
		}
		// clause.Eq renders a nil value as IS NULL.
		q = q.Where(clause.Eq{Column: clause.Column{Name: c}, Value: attr.Native(p.Value)})
	}

	if f.ExcludeID != "" {
		pk := s.schema.PrioritizedPrimaryField
		if pk == nil {
			return nil, "", fmt.Errorf("gormstore: %s has no primary key to exclude by", s.schema.Table)
		}
		q = q.Where(clause.Neq{Column: clause.Column{Name: pk.DBName}, Value: f.ExcludeID})
	}

	return q, col, nil
}

func (s *Store) column(name string) (string, error) {
	f, err := s.field(name)
	if err != nil {
		return "", err
	}
	return f.DBName, nil
}

func (s *Store) field(name string) (*schema.Field, error) {
	f := s.schema.LookUpField(name)
	if f == nil || f.DBName == "" {
		return nil, fmt.Errorf("gormstore: %s has no field %q", s.schema.Table, name)
	}
	return f, nil
}
