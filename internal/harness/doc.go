// Package harness runs uniqueness scenarios against a fresh store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: gap_not_reused
//	description: "Suffix numbers continue after the highest one in use"
//	entity: projects
//	config:
//	  entities:
//	    projects:
//	      constraint_fields: [organization_id]
//	steps:
//	  - op: create
//	    ref: a
//	    attrs: { name: Foo, organization_id: 1 }
//	    expect: { value: Foo }
//	  - op: delete
//	    ref: a
//	assertions:
//	  - type: final_values
//	    values: []
//
// Supported ops are create, update, delete, restore and resolve. A ref
// names the record a create produced so later steps can address it.
//
// # Assertion Types
//
//   - final_values: the entity's unique values in write order
//   - event_count: how many resolver events of one kind the run emitted
//
// # Deterministic Testing
//
// Every run uses an in-memory SQLite store, testutil.DeterministicClock and
// testutil.FixedIDs, so the trace is byte-identical across runs and can be
// compared against golden files in testdata/golden.
package harness
