// Package resolver computes collision-free values for a record's unique field.
//
// Given a candidate value, a scope and a Store that can be asked which values
// already exist, Resolve returns a value that (at the moment of the last query)
// does not collide with any other record in the same scope.
//
// # Algorithm
//
// If the candidate is free it is returned unchanged; base names are never
// suffixed pre-emptively. Otherwise one of two paths runs:
//
// Custom generator: the generator is called with (base, scope, attempt) for
// attempt 0, 1, ... up to Policy.MaxAttempts. Every result is checked
// against the store. The base passed in is always the original candidate,
// never a previous result.
//
// Default suffix: the candidate's own suffix (if any) is stripped to get the
// base, one batch query fetches every value equal to the base or starting
// with base+separator, and the next number is max(observed)+1. Gaps are never
// reused: with "Foo (1)" and "Foo (3)" present, the next value is "Foo (4)".
// The chosen value is re-checked directly and the number incremented until
// free.
//
// # Concurrency
//
// Resolve is synchronous and takes no locks. Uniqueness is decided by
// read-then-write, so two concurrent resolutions for the same base and scope
// can observe the same state and return the same value. Correctness under
// concurrency requires a uniqueness constraint in the store and a write path
// that retries resolution on a constraint violation (see internal/records).
//
// The default path's re-check loop has no upper bound. Each iteration moves
// past a number already proven occupied, so it terminates after at most
// (conflicting records + 1) checks under serialized access. Writers that keep
// inserting the next number between checks can extend it indefinitely; this
// is a known liveness caveat, not something the loop tries to cap.
package resolver
