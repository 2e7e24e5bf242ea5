// Package config loads uniqueness settings from YAML or CUE files.
//
// A config has a defaults block and per-entity overrides:
//
//	defaults:
//	  suffix_format: " ({n})"
//	  max_attempts: 10
//	entities:
//	  projects:
//	    constraint_fields: [organization_id]
//	    with_trashed: true
//
// Every file is validated against the embedded CUE schema (schema.cue), which
// also fills in defaults. YAML is additionally decoded with unknown-field
// rejection so typos fail with a line number.
//
// The legacy keys max_tries and soft_delete are accepted as aliases of
// max_attempts and with_trashed.
package config
