// Package attr provides the scalar value types stored on records and used as
// uniqueness scope values.
//
// This package imports nothing internal. Every other package that touches
// record attributes or scope values goes through these types, which keeps
// equality semantics identical between the resolver, the SQL compiler and the
// stores.
//
// Key design constraints:
//   - Only null, string, int64 and bool values exist. NO floats: float
//     equality is not a sound basis for a uniqueness scope.
//   - Null is a real value (Null{}), never a nil interface. Two nulls in the
//     same scope field are equal.
//   - Canonical JSON keeps string bytes untouched. Names are compared
//     byte-exact, so serialization must never normalize them.
package attr
