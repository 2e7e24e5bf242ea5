// Package store provides SQLite-backed storage for uniquely named records.
//
// Every record belongs to an entity (a logical collection such as "projects")
// and carries an attribute object stored as canonical JSON. The entity's
// unique field value and the hash of its scope values are denormalized into
// the unique_value and scope_key columns.
//
// # Critical Patterns
//
// Live uniqueness backstop
//   - UNIQUE(entity, unique_field, scope_key, unique_value) WHERE deleted_at IS NULL
//   - Resolution is read-then-write, so concurrent writers can race. The
//     partial index turns a lost race into a constraint error the caller can
//     retry (see IsUniqueViolation).
//
// Logical time
//   - seq is a logical clock supplied by the caller, never a timestamp.
//   - deleted_at holds the seq at which the record was soft-deleted.
//
// Deterministic query results
//   - All list queries end with: ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Table binds the store to one entity and implements resolver.Store.
package store
