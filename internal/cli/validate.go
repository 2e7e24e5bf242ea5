package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/uniqname/internal/config"
	"github.com/roach88/uniqname/internal/generators"
)

// EntitySummary is the effective configuration of one entity.
type EntitySummary struct {
	Entity           string                  `json:"entity"`
	UniqueField      string                  `json:"unique_field"`
	ConstraintFields []string                `json:"constraint_fields"`
	SuffixFormat     string                  `json:"suffix_format"`
	MaxAttempts      int                     `json:"max_attempts"`
	WithTrashed      bool                    `json:"with_trashed"`
	SoftDeletes      bool                    `json:"soft_deletes"`
	Trim             bool                    `json:"trim"`
	Normalize        string                  `json:"normalize"`
	Generator        *config.GeneratorConfig `json:"generator,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Entities []EntitySummary `json:"entities"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config file",
		Long: `Validate a YAML or CUE config file against the schema, check suffix
formats and compile every generator expression.

Prints the effective settings of each configured entity.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(path)
	if err != nil {
		return reportConfigError(formatter, err)
	}
	formatter.VerboseLog("Loaded %s", path)

	registry := generators.NewRegistry(generators.UUIDv7Source)
	result := ValidationResult{Valid: true, Entities: []EntitySummary{}}
	for _, entity := range cfg.EntityNames() {
		s := cfg.For(entity)
		formatter.VerboseLog("Checking entity: %s", entity)

		if _, err := generators.FromConfig(s.Generator, generators.UUIDv7Source); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeConfig, fmt.Sprintf("entity %s: invalid generator", entity), err)
		}
		if s.Generator != nil && s.Generator.Name != "" {
			if _, ok := registry.Lookup(s.Generator.Name); !ok {
				return fail(formatter, ExitCommandError, ErrCodeConfig,
					fmt.Sprintf("entity %s: unknown generator %q (known: %v)", entity, s.Generator.Name, registry.Names()), nil)
			}
		}

		result.Entities = append(result.Entities, EntitySummary{
			Entity:           s.Entity,
			UniqueField:      s.UniqueField,
			ConstraintFields: s.ConstraintFields,
			SuffixFormat:     s.SuffixFormat,
			MaxAttempts:      s.MaxAttempts,
			WithTrashed:      s.IncludeTrashed(),
			SoftDeletes:      s.SoftDeletes,
			Trim:             s.Trim,
			Normalize:        s.Normalize,
			Generator:        s.Generator,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	formatter.Success(fmt.Sprintf("✓ %s is valid (%d entities)", path, len(result.Entities)))
	for _, e := range result.Entities {
		formatter.VerboseLog("  %s: field=%s scope=%v format=%q", e.Entity, e.UniqueField, e.ConstraintFields, e.SuffixFormat)
	}
	return nil
}
