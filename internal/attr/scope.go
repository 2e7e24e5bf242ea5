package attr

import (
	"strings"
)

// Pair is one constraint field and its value.
type Pair struct {
	Field string
	Value Value
}

// P is a shorthand for Pair.
// Example: Scope{P("organization_id", Int(1)), P("department_id", Null{})}
func P(field string, value Value) Pair {
	return Pair{Field: field, Value: value}
}

// Scope is an ordered list of constraint field values. Uniqueness is checked
// only among records whose scope fields are all equal (null equals null).
// An empty Scope means global uniqueness.
type Scope []Pair

// ScopeOf extracts the named fields from attrs, in order. Missing fields
// become Null.
func ScopeOf(attrs Object, fields []string) Scope {
	scope := make(Scope, 0, len(fields))
	for _, f := range fields {
		scope = append(scope, Pair{Field: f, Value: attrs.Get(f)})
	}
	return scope
}

// Fields returns the field names in order.
func (s Scope) Fields() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Field
	}
	return out
}

// Get returns the value of field and whether it is part of the scope.
func (s Scope) Get(field string) (Value, bool) {
	for _, p := range s {
		if p.Field == field {
			if p.Value == nil {
				return Null{}, true
			}
			return p.Value, true
		}
	}
	return nil, false
}

// Object returns the scope as an Object (order is lost).
func (s Scope) Object() Object {
	obj := make(Object, len(s))
	for _, p := range s {
		if p.Value == nil {
			obj[p.Field] = Null{}
			continue
		}
		obj[p.Field] = p.Value
	}
	return obj
}

// Native returns the scope as a plain map for generator code.
func (s Scope) Native() map[string]any {
	m := make(map[string]any, len(s))
	for _, p := range s {
		m[p.Field] = Native(p.Value)
	}
	return m
}

// String renders "field=value, field=value"; an empty scope renders "global".
func (s Scope) String() string {
	if len(s) == 0 {
		return "global"
	}
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.Field + "=" + Format(p.Value)
	}
	return strings.Join(parts, ", ")
}
