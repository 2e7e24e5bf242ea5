package gormstore

import (
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/config"
	"github.com/roach88/uniqname/internal/generators"
	"github.com/roach88/uniqname/internal/resolver"
)

var (
	// ErrBatchCreate is added to the statement when a slice of models is created.
	ErrBatchCreate = errors.New("gormstore: batch create is not supported for uniquely named models")
	// ErrMultiRowUpdate is added when an update would write the same unique
	// value to more than one row.
	ErrMultiRowUpdate = errors.New("gormstore: update writes the unique field of more than one row")
)

// HookOption configures Register.
type HookOption func(*hook)

// WithRegistry sets the named-generator registry (built-ins by default).
func WithRegistry(reg *resolver.Registry) HookOption {
	return func(h *hook) { h.registry = reg }
}

// WithTracer receives resolver events from every callback.
func WithTracer(t resolver.Tracer) HookOption {
	return func(h *hook) { h.tracer = t }
}

type hook struct {
	store     *Store
	settings  config.Settings
	unique    *schema.Field
	scope     []*schema.Field
	generator resolver.Generator
	registry  *resolver.Registry
	tracer    resolver.Tracer
}

// Register installs callbacks that resolve model's unique field before every
// create and update of its table, following settings. settings.Entity is
// informational; the table comes from the model.
func Register(db *gorm.DB, model any, settings config.Settings, opts ...HookOption) error {
	s, err := New(db, model)
	if err != nil {
		return err
	}

	h := &hook{store: s, settings: settings}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.registry == nil {
		h.registry = generators.NewRegistry(nil)
	}

	if h.unique, err = s.field(settings.UniqueField); err != nil {
		return err
	}
	if h.unique.FieldType.Kind() != reflect.String {
		return fmt.Errorf("gormstore: %s.%s must be a string field", s.Table(), h.unique.Name)
	}
	for _, name := range settings.ConstraintFields {
		f, err := s.field(name)
		if err != nil {
			return err
		}
		h.scope = append(h.scope, f)
	}
	if h.generator, err = generators.FromConfig(settings.Generator, nil); err != nil {
		return err
	}

	name := "uniqname:" + s.Table()
	if err := db.Callback().Create().Before("gorm:create").Register(name+":create", h.before(false)); err != nil {
		return fmt.Errorf("gormstore: register create callback: %w", err)
	}
	if err := db.Callback().Update().Before("gorm:update").Register(name+":update", h.before(true)); err != nil {
		return fmt.Errorf("gormstore: register update callback: %w", err)
	}
	return nil
}

func (h *hook) before(update bool) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		stmt := tx.Statement
		if tx.Error != nil || stmt.Schema == nil || stmt.Schema.Table != h.store.Table() {
			return
		}
		if stmt.ReflectValue.Kind() == reflect.Slice || stmt.ReflectValue.Kind() == reflect.Array {
			if !update {
				tx.AddError(ErrBatchCreate)
			}
			return
		}
		if stmt.ReflectValue.Kind() != reflect.Struct {
			return
		}

		if update {
			h.beforeUpdate(tx)
			return
		}

		v, _ := h.unique.ValueOf(stmt.Context, stmt.ReflectValue)
		raw, ok := v.(string)
		if !ok {
			return
		}
		scope, err := h.scopeOf(func(f *schema.Field) any {
			v, _ := f.ValueOf(stmt.Context, stmt.ReflectValue)
			return v
		}, nil)
		if err != nil {
			tx.AddError(err)
			return
		}
		h.resolve(tx, raw, scope, "")
	}
}

// beforeUpdate resolves the unique field only when the update writes it with
// a value that differs from the stored one. The stored row supplies the
// excluded id and any scope field the update leaves alone.
func (h *hook) beforeUpdate(tx *gorm.DB) {
	stmt := tx.Statement
	w, err := newWrites(stmt)
	if err != nil {
		tx.AddError(err)
		return
	}

	v, ok := w.value(h.unique)
	if !ok {
		return
	}
	raw, ok := deref(v).(string)
	if !ok {
		return
	}

	row, found, err := h.target(tx)
	if err != nil {
		tx.AddError(err)
		return
	}
	if !found {
		return
	}
	if stored, _ := h.unique.ValueOf(stmt.Context, row); stored == raw {
		return
	}

	var excludeID string
	if pk := stmt.Schema.PrioritizedPrimaryField; pk != nil {
		if id, zero := pk.ValueOf(stmt.Context, row); !zero {
			excludeID = fmt.Sprint(id)
		}
	}

	scope, err := h.scopeOf(func(f *schema.Field) any {
		v, _ := f.ValueOf(stmt.Context, row)
		return v
	}, w)
	if err != nil {
		tx.AddError(err)
		return
	}
	h.resolve(tx, raw, scope, excludeID)
}

func (h *hook) resolve(tx *gorm.DB, raw string, scope attr.Scope, excludeID string) {
	stmt := tx.Statement

	// A fresh session shares the statement's connection, so lookups
	// run inside the write's transaction.
	store := h.store.withDB(tx.Session(&gorm.Session{NewDB: true}))
	res := resolver.New(store, resolver.WithRegistry(h.registry), resolver.WithTracer(h.tracer))
	resolved, err := res.Resolve(stmt.Context, resolver.Request{
		Field:          h.unique.DBName,
		Value:          h.settings.Prepare(raw),
		Scope:          scope,
		ExcludeID:      excludeID,
		IncludeTrashed: h.settings.WithTrashed && store.SoftDeletes(),
		Policy: resolver.Policy{
			Format:      h.settings.SuffixFormat,
			Generator:   h.generator,
			MaxAttempts: h.settings.MaxAttempts,
		},
	})
	if err != nil {
		tx.AddError(err)
		return
	}

	stmt.SetColumn(h.unique.DBName, resolved)
}

// target loads the row an update is about to write. The model's primary key
// identifies it when set; otherwise the statement's conditions do. found is
// false when the update matches nothing, or has no conditions at all and
// GORM is going to refuse it.
func (h *hook) target(tx *gorm.DB) (reflect.Value, bool, error) {
	stmt := tx.Statement
	q := tx.Session(&gorm.Session{NewDB: true})
	if stmt.Unscoped {
		q = q.Unscoped()
	}

	conds := 0
	if pk := stmt.Schema.PrioritizedPrimaryField; pk != nil {
		if id, zero := pk.ValueOf(stmt.Context, stmt.ReflectValue); !zero {
			q = q.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName}, Value: id})
			conds++
		}
	}
	if c, ok := stmt.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok && len(where.Exprs) > 0 {
			q = q.Clauses(clause.Where{Exprs: where.Exprs})
			conds++
		}
	}
	if conds == 0 && !stmt.DB.AllowGlobalUpdate {
		return reflect.Value{}, false, nil
	}

	rows := reflect.New(reflect.SliceOf(stmt.Schema.ModelType))
	if err := q.Limit(2).Find(rows.Interface()).Error; err != nil {
		return reflect.Value{}, false, fmt.Errorf("gormstore: load %s row being updated: %w", h.store.Table(), err)
	}
	switch rows.Elem().Len() {
	case 0:
		return reflect.Value{}, false, nil
	case 1:
		return rows.Elem().Index(0), true, nil
	default:
		return reflect.Value{}, false, ErrMultiRowUpdate
	}
}

// writes describes the columns an update assigns.
type writes struct {
	stmt       *gorm.Statement
	dest       map[string]interface{}
	values     reflect.Value
	schema     *schema.Schema
	selected   map[string]bool
	restricted bool
}

func newWrites(stmt *gorm.Statement) (*writes, error) {
	w := &writes{stmt: stmt}
	w.selected, w.restricted = stmt.SelectAndOmitColumns(false, true)

	if dest, ok := stmt.Dest.(map[string]interface{}); ok {
		w.dest = dest
		return w, nil
	}

	w.values = reflect.Indirect(reflect.ValueOf(stmt.Dest))
	if w.values.Kind() != reflect.Struct {
		return w, nil
	}
	w.schema = stmt.Schema
	if w.values.Type() != stmt.Schema.ModelType {
		ds := &gorm.Statement{DB: stmt.DB}
		if err := ds.Parse(stmt.Dest); err != nil {
			return nil, fmt.Errorf("gormstore: parse update values: %w", err)
		}
		w.schema = ds.Schema
	}
	return w, nil
}

// value returns what the update assigns to f. Struct values skip zero fields
// unless they are selected, matching GORM's own assignment rules.
func (w *writes) value(f *schema.Field) (any, bool) {
	sel, listed := w.selected[f.DBName]
	if (listed && !sel) || (!listed && w.restricted) {
		return nil, false
	}
	if w.dest != nil {
		return lookup(w.dest, f)
	}
	if w.schema == nil {
		return nil, false
	}
	df := w.schema.LookUpField(f.DBName)
	if df == nil {
		return nil, false
	}
	v, zero := df.ValueOf(w.stmt.Context, w.values)
	if zero && !sel {
		return nil, false
	}
	return v, true
}

// scopeOf reads the constraint fields. Values the update writes win over
// fallback, which reads the model on create and the stored row on update.
func (h *hook) scopeOf(fallback func(*schema.Field) any, w *writes) (attr.Scope, error) {
	scope := make(attr.Scope, 0, len(h.scope))
	for _, f := range h.scope {
		var raw any
		written := false
		if w != nil {
			raw, written = w.value(f)
		}
		if !written {
			raw = fallback(f)
		}

		v, err := attr.FromAny(deref(raw))
		if err != nil {
			return nil, fmt.Errorf("gormstore: scope field %s: %w", f.Name, err)
		}
		scope = append(scope, attr.P(f.DBName, v))
	}
	return scope, nil
}

func lookup(dest map[string]interface{}, f *schema.Field) (any, bool) {
	if dest == nil {
		return nil, false
	}
	if v, ok := dest[f.DBName]; ok {
		return v, true
	}
	v, ok := dest[f.Name]
	return v, ok
}

// deref unwraps pointer fields; nil pointers become nil (SQL NULL).
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
