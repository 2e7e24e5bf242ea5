package attr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface over the scalar attribute types.
// Only Null, String, Int and Bool implement it.
type Value interface {
	attrValue() // Sealed - only these types implement it
}

// Null represents an absent or SQL NULL attribute value.
type Null struct{}

func (Null) attrValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a text attribute value.
type String string

func (String) attrValue() {}

// Int represents an integer attribute value. Always int64, never float64.
type Int int64

func (Int) attrValue() {}

// Bool represents a boolean attribute value.
type Bool bool

func (Bool) attrValue() {}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// FromAny converts a decoded Go value (from JSON, YAML or CUE) to a Value.
// Whole-number floats are accepted because YAML and JSON decoders may
// produce them; fractional floats are rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return uintValue(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return uintValue(val)
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats are not allowed as attribute values: %s", val)
		}
		return Int(n), nil
	case float64:
		return floatValue(val)
	case float32:
		return floatValue(float64(val))
	default:
		return nil, fmt.Errorf("unsupported attribute type: %T", v)
	}
}

func uintValue(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer out of int64 range: %d", u)
	}
	return Int(int64(u)), nil
}

func floatValue(f float64) (Value, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return nil, fmt.Errorf("floats are not allowed as attribute values: %v", f)
	}
	return Int(int64(f)), nil
}

// Native converts a Value to the Go type used as a SQL parameter.
// Null becomes nil, so drivers bind it as NULL.
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Format renders a Value for human-readable output.
// Strings are returned as-is; null renders as "null".
func Format(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return "null"
	}
}

// ParseLiteral parses a command-line literal into a Value.
//
//	null          → Null
//	true / false  → Bool
//	-12, 42       → Int
//	"42"          → String("42") (double quotes force a string)
//	anything else → String
func ParseLiteral(s string) Value {
	switch s {
	case "null":
		return Null{}
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		if unq, err := strconv.Unquote(s); err == nil {
			return String(unq)
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	return String(s)
}

// Equal reports whether a and b are the same scalar.
// nil and Null are equal to each other.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	return a == b
}

// Object maps attribute names to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which orders some keys differently.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Get returns the value for key, or Null when absent.
func (obj Object) Get(key string) Value {
	if v, ok := obj[key]; ok && v != nil {
		return v
	}
	return Null{}
}

// Clone returns a shallow copy. Values are immutable scalars, so this is a
// full copy for all practical purposes.
func (obj Object) Clone() Object {
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// ObjectFromMap converts a decoded map into an Object.
func ObjectFromMap(m map[string]any) (Object, error) {
	obj := make(Object, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		obj[k] = v
	}
	return obj, nil
}

// MarshalJSON implements json.Marshaler with canonical key ordering.
func (obj Object) MarshalJSON() ([]byte, error) {
	return marshalCanonicalObject(obj)
}

// UnmarshalJSON implements json.Unmarshaler for Object.
// Numbers are decoded as int64; floats are rejected.
func (obj *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out, err := ObjectFromMap(raw)
	if err != nil {
		return err
	}
	*obj = out
	return nil
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
