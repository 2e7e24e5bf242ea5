// Package queryir is the query intermediate representation used by the record
// stores.
//
// The resolver only ever asks two questions of a store ("how many records have
// value V in scope S?" and "which values equal B or start with P in scope S?").
// Both are expressed here as small, sealed query trees so the SQL text is
// produced in exactly one place (internal/querysql) and every value is bound
// as a parameter.
//
//	[resolver.Filter] → [queryir.Count / Select] → [querysql] → SQLite
//
// # Fields
//
// A Field is either a physical column (Column) or a key inside the record's
// JSON attribute object (Attr). Field names are interpolated into SQL, so
// Validate rejects anything that is not a plain identifier.
//
// # Null semantics
//
// Equals is null-safe: Equals{Attr("organization_id"), attr.Null{}} matches
// records whose organization_id is null or absent. This is what makes two
// null-scoped records land in the same uniqueness scope.
//
// # Sealed interfaces
//
// Query and Predicate use the marker method pattern. Only types in this
// package implement them, which keeps the compiler's type switches exhaustive.
package queryir
