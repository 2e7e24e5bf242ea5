package queryir

import "github.com/roach88/uniqname/internal/attr"

// Query represents an abstract query. Sealed: only Select and Count
// implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition. Sealed: only types in this
// package implement it.
//
// Predicate types:
//   - Equals: field IS value (null-safe)
//   - NotEquals: field IS NOT value (null-safe)
//   - IsNull: field IS NULL
//   - HasPrefix: field starts with a literal prefix (case-sensitive)
//   - And, Or: conjunction, disjunction
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Field references a column or a JSON attribute of a record.
type Field struct {
	Name string
	Attr bool
}

// Column references a physical column.
func Column(name string) Field { return Field{Name: name} }

// Attr references a key in the record's attribute object.
func Attr(name string) Field { return Field{Name: name, Attr: true} }

// Select reads fields from matching rows.
//
//	SELECT <fields> FROM <from> WHERE <filter> ORDER BY seq, id
//
// Rows always come back in insertion order so results are deterministic.
type Select struct {
	From   string    // Table name
	Fields []Field   // Selected fields (must be non-empty)
	Filter Predicate // WHERE conditions (nil = no filter)
}

func (Select) queryNode() {}

// Count counts matching rows.
//
//	SELECT COUNT(*) FROM <from> WHERE <filter>
type Count struct {
	From   string
	Filter Predicate
}

func (Count) queryNode() {}

// Equals matches rows where Field equals Value. Null equals null.
type Equals struct {
	Field Field
	Value attr.Value
}

func (Equals) predicateNode() {}

// NotEquals matches rows where Field differs from Value. Null differs from
// every non-null value.
type NotEquals struct {
	Field Field
	Value attr.Value
}

func (NotEquals) predicateNode() {}

// IsNull matches rows where Field is null or absent.
type IsNull struct {
	Field Field
}

func (IsNull) predicateNode() {}

// HasPrefix matches rows whose Field (as text) starts with Prefix.
// Comparison is case-sensitive; no wildcard characters exist.
type HasPrefix struct {
	Field  Field
	Prefix string
}

func (HasPrefix) predicateNode() {}

// And matches rows satisfying every predicate. Empty And matches everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or matches rows satisfying at least one predicate. Empty Or matches nothing.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Conj builds an And, dropping nil predicates.
func Conj(preds ...Predicate) And {
	out := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return And{Predicates: out}
}
