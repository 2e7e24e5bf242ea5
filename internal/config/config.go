package config

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/uniqname/internal/resolver"
	"github.com/roach88/uniqname/internal/suffix"
)

// Normalization modes for candidate values.
const (
	NormalizeNone = "none"
	NormalizeNFC  = "nfc"
)

// GeneratorConfig selects a custom generator: a registered name or an expr
// program. Exactly one is set.
type GeneratorConfig struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
}

// Options is one block of settings. Nil fields inherit.
type Options struct {
	UniqueField      *string          `yaml:"unique_field,omitempty" json:"unique_field,omitempty"`
	ConstraintFields *[]string        `yaml:"constraint_fields,omitempty" json:"constraint_fields,omitempty"`
	SuffixFormat     *string          `yaml:"suffix_format,omitempty" json:"suffix_format,omitempty"`
	MaxAttempts      *int             `yaml:"max_attempts,omitempty" json:"max_attempts,omitempty"`
	MaxTries         *int             `yaml:"max_tries,omitempty" json:"max_tries,omitempty"`
	WithTrashed      *bool            `yaml:"with_trashed,omitempty" json:"with_trashed,omitempty"`
	SoftDelete       *bool            `yaml:"soft_delete,omitempty" json:"soft_delete,omitempty"`
	SoftDeletes      *bool            `yaml:"soft_deletes,omitempty" json:"soft_deletes,omitempty"`
	Trim             *bool            `yaml:"trim,omitempty" json:"trim,omitempty"`
	Normalize        *string          `yaml:"normalize,omitempty" json:"normalize,omitempty"`
	Generator        *GeneratorConfig `yaml:"generator,omitempty" json:"generator,omitempty"`
}

// Config is a loaded configuration file.
type Config struct {
	Defaults Options            `yaml:"defaults" json:"defaults"`
	Entities map[string]Options `yaml:"entities,omitempty" json:"entities,omitempty"`
}

// Settings are the effective settings for one entity.
type Settings struct {
	Entity           string
	UniqueField      string
	ConstraintFields []string
	SuffixFormat     string
	MaxAttempts      int
	WithTrashed      bool

	// SoftDeletes reports whether the entity supports soft deletion. When
	// false, WithTrashed has no effect and deletes are permanent.
	SoftDeletes bool

	Trim      bool
	Normalize string
	Generator *GeneratorConfig
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Parse([]byte("defaults: {}\n"), FormatYAML, "default.yaml")
	if err != nil {
		panic(fmt.Sprintf("config: default config invalid: %v", err))
	}
	return cfg
}

// For returns the effective settings for entity: its overrides layered on
// the defaults.
func (c *Config) For(entity string) Settings {
	s := Settings{
		Entity:       entity,
		UniqueField:  resolver.DefaultField,
		SuffixFormat: suffix.Default,
		MaxAttempts:  resolver.DefaultMaxAttempts,
		SoftDeletes:  true,
		Trim:         true,
		Normalize:    NormalizeNone,
	}
	s.apply(c.Defaults)
	if o, ok := c.Entities[entity]; ok {
		s.apply(o)
	}
	return s
}

func (s *Settings) apply(o Options) {
	if o.UniqueField != nil {
		s.UniqueField = *o.UniqueField
	}
	if o.ConstraintFields != nil {
		s.ConstraintFields = append([]string(nil), (*o.ConstraintFields)...)
	}
	if o.SuffixFormat != nil {
		s.SuffixFormat = *o.SuffixFormat
	}
	if n := o.maxAttempts(); n != nil {
		s.MaxAttempts = *n
	}
	if b := o.withTrashed(); b != nil {
		s.WithTrashed = *b
	}
	if o.SoftDeletes != nil {
		s.SoftDeletes = *o.SoftDeletes
	}
	if o.Trim != nil {
		s.Trim = *o.Trim
	}
	if o.Normalize != nil {
		s.Normalize = *o.Normalize
	}
	if o.Generator != nil {
		g := *o.Generator
		s.Generator = &g
	}
}

func (o Options) maxAttempts() *int {
	if o.MaxAttempts != nil {
		return o.MaxAttempts
	}
	return o.MaxTries
}

func (o Options) withTrashed() *bool {
	if o.WithTrashed != nil {
		return o.WithTrashed
	}
	return o.SoftDelete
}

// IncludeTrashed reports whether soft-deleted records count as conflicts.
// Entities without soft deletes never have trashed records.
func (s Settings) IncludeTrashed() bool {
	return s.SoftDeletes && s.WithTrashed
}

// Prepare applies the trim and normalization settings to a candidate.
// Comparison stays byte-exact; NFC only makes canonically equivalent
// spellings collide.
func (s Settings) Prepare(v string) string {
	if s.Trim {
		v = strings.TrimSpace(v)
	}
	if s.Normalize == NormalizeNFC {
		v = norm.NFC.String(v)
	}
	return v
}

// EntityNames returns the configured entity names, sorted.
func (c *Config) EntityNames() []string {
	names := make([]string, 0, len(c.Entities))
	for name := range c.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate checks what the schema cannot express.
func (c *Config) validate() error {
	if err := validateOptions("defaults", c.Defaults); err != nil {
		return err
	}
	if err := validateSettings("defaults", c.For("")); err != nil {
		return err
	}
	for _, name := range c.EntityNames() {
		path := "entities." + name
		if err := validateOptions(path, c.Entities[name]); err != nil {
			return err
		}
		if err := validateSettings(path, c.For(name)); err != nil {
			return err
		}
	}
	return nil
}

func validateOptions(path string, o Options) error {
	if o.MaxAttempts != nil && o.MaxTries != nil && *o.MaxAttempts != *o.MaxTries {
		return fmt.Errorf("%s: max_attempts (%d) and its alias max_tries (%d) disagree", path, *o.MaxAttempts, *o.MaxTries)
	}
	if o.WithTrashed != nil && o.SoftDelete != nil && *o.WithTrashed != *o.SoftDelete {
		return fmt.Errorf("%s: with_trashed and its alias soft_delete disagree", path)
	}
	if o.SuffixFormat != nil {
		if _, err := suffix.Parse(*o.SuffixFormat); err != nil {
			return fmt.Errorf("%s.suffix_format: %w", path, err)
		}
	}
	return nil
}

// validateSettings checks the effective settings, after inheritance.
func validateSettings(path string, s Settings) error {
	for _, f := range s.ConstraintFields {
		if f == s.UniqueField {
			return fmt.Errorf("%s: constraint field %q is the unique field", path, f)
		}
	}
	return nil
}
