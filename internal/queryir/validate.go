package queryir

import (
	"errors"
	"fmt"
	"regexp"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether name can be used as a table, column or attribute
// name.
func ValidIdent(name string) bool {
	return identPattern.MatchString(name)
}

// Validate checks that a query is well formed: identifiers are plain,
// selects name their fields, and no nil predicate hides inside And/Or.
//
// Validate is a pure function with no side effects. All problems are
// collected and returned joined.
func Validate(query Query) error {
	v := &validator{}
	v.validateQuery(query)
	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addError("nil query")
	case Select:
		v.validateTable(query.From)
		if len(query.Fields) == 0 {
			v.addError("select from %q: fields must not be empty", query.From)
		}
		for _, f := range query.Fields {
			v.validateField(f)
		}
		v.validatePredicate(query.Filter, true)
	case *Select:
		v.validateQuery(*query)
	case Count:
		v.validateTable(query.From)
		v.validatePredicate(query.Filter, true)
	case *Count:
		v.validateQuery(*query)
	default:
		v.addError("unknown query type: %T", q)
	}
}

func (v *validator) validateTable(name string) {
	if !ValidIdent(name) {
		v.addError("invalid table name %q", name)
	}
}

func (v *validator) validateField(f Field) {
	if !ValidIdent(f.Name) {
		kind := "column"
		if f.Attr {
			kind = "attribute"
		}
		v.addError("invalid %s name %q", kind, f.Name)
	}
}

// validatePredicate checks p. top is true for the query's own filter, where
// nil means "no filter" and is allowed.
func (v *validator) validatePredicate(p Predicate, top bool) {
	switch pred := p.(type) {
	case nil:
		if !top {
			v.addError("nil predicate inside And/Or")
		}
	case Equals:
		v.validateField(pred.Field)
	case NotEquals:
		v.validateField(pred.Field)
		if pred.Value == nil {
			v.addError("not-equals on %q: value must not be nil (use attr.Null{})", pred.Field.Name)
		}
	case IsNull:
		v.validateField(pred.Field)
	case HasPrefix:
		v.validateField(pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, false)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, false)
		}
	case *Equals:
		v.validatePredicate(*pred, top)
	case *NotEquals:
		v.validatePredicate(*pred, top)
	case *IsNull:
		v.validatePredicate(*pred, top)
	case *HasPrefix:
		v.validatePredicate(*pred, top)
	case *And:
		v.validatePredicate(*pred, top)
	case *Or:
		v.validatePredicate(*pred, top)
	default:
		v.addError("unknown predicate type: %T", p)
	}
}
