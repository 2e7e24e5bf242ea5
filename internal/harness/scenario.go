package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/uniqname/internal/config"
)

// Scenario is a scripted sequence of writes with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Entity is the default entity for steps that do not name one.
	Entity string `yaml:"entity"`

	// Config is an inline configuration document, in the same shape as a
	// config file. Empty means config.Default().
	Config yaml.Node `yaml:"config,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one repository operation.
type Step struct {
	// Op is create, update, delete, restore or resolve.
	Op string `yaml:"op"`

	// Ref names a record. create binds it; the other ops address it.
	// resolve with a ref previews a rename of that record.
	Ref string `yaml:"ref,omitempty"`

	// Entity overrides the scenario entity for create and resolve.
	Entity string `yaml:"entity,omitempty"`

	// Attrs are the attributes to create with, the patch to update with,
	// or the attributes to preview.
	Attrs map[string]interface{} `yaml:"attrs,omitempty"`

	// Expect is checked against the step outcome when present.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Value is the expected unique value after the step.
	Value *string `yaml:"value,omitempty"`

	// Error is the expected error code; see ErrorCode.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the end state or the resolver events.
type Assertion struct {
	// Type is final_values or event_count.
	Type string `yaml:"type"`

	// Entity defaults to the scenario entity (final_values).
	Entity string `yaml:"entity,omitempty"`

	// Values are the expected unique values in write order (final_values).
	Values []string `yaml:"values,omitempty"`

	// IncludeTrashed also lists soft-deleted records (final_values).
	IncludeTrashed bool `yaml:"include_trashed,omitempty"`

	// Event is a resolver event kind (event_count).
	Event string `yaml:"event,omitempty"`

	// Count is the expected number of events (event_count).
	Count int `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpRestore = "restore"
	OpResolve = "resolve"
)

// Assertion type constants.
const (
	AssertFinalValues = "final_values"
	AssertEventCount  = "event_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadConfig returns the scenario's inline configuration, validated like a
// config file.
func (s *Scenario) LoadConfig() (*config.Config, error) {
	if s.Config.IsZero() {
		return config.Default(), nil
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return nil, fmt.Errorf("scenario config: %w", err)
	}
	return config.Parse(data, config.FormatYAML, s.Name+".config")
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	refs := map[string]bool{}
	for i, step := range s.Steps {
		if err := validateStep(i, step, s.Entity, refs); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, s.Entity); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step, entity string, refs map[string]bool) error {
	needsEntity := func() error {
		if step.Entity == "" && entity == "" {
			return fmt.Errorf("steps[%d]: entity is required for %s", i, step.Op)
		}
		return nil
	}
	needsRef := func() error {
		if step.Ref == "" {
			return fmt.Errorf("steps[%d]: ref is required for %s", i, step.Op)
		}
		if !refs[step.Ref] {
			return fmt.Errorf("steps[%d]: unknown ref %q", i, step.Ref)
		}
		return nil
	}

	switch step.Op {
	case OpCreate:
		if err := needsEntity(); err != nil {
			return err
		}
		if step.Ref != "" {
			if refs[step.Ref] {
				return fmt.Errorf("steps[%d]: ref %q already bound", i, step.Ref)
			}
			refs[step.Ref] = true
		}
	case OpUpdate:
		if err := needsRef(); err != nil {
			return err
		}
		if len(step.Attrs) == 0 {
			return fmt.Errorf("steps[%d]: attrs are required for update", i)
		}
	case OpDelete, OpRestore:
		if err := needsRef(); err != nil {
			return err
		}
	case OpResolve:
		if err := needsEntity(); err != nil {
			return err
		}
		if step.Ref != "" && !refs[step.Ref] {
			return fmt.Errorf("steps[%d]: unknown ref %q", i, step.Ref)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	if step.Expect != nil && step.Expect.Value != nil && step.Expect.Error != "" {
		return fmt.Errorf("steps[%d].expect: value and error are mutually exclusive", i)
	}
	return nil
}

func validateAssertion(i int, a Assertion, entity string) error {
	switch a.Type {
	case AssertFinalValues:
		if a.Entity == "" && entity == "" {
			return fmt.Errorf("assertions[%d]: entity is required for final_values", i)
		}
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", i)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", i)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}
