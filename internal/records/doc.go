// Package records is the write path: it keeps an entity's unique field
// unique whenever records are created, renamed or restored.
//
// Before an insert, or before an update that changes the unique field, the
// Repository trims (and optionally NFC-normalizes) the candidate, resolves it
// against the live records in the same scope, and writes the result. Updates
// exclude the record itself so an unchanged name never conflicts with its
// own row.
//
// Resolution and the write are not atomic. Two writers can pick the same
// value; the store's live-uniqueness index rejects the loser, and the
// Repository re-resolves and retries a bounded number of times.
package records
