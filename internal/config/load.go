package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Format identifies a config file syntax.
type Format string

// Supported config formats.
const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// Error codes for LoadError.
const (
	ErrCodeRead    = "E201" // File unreadable
	ErrCodeFormat  = "E202" // Unknown file extension
	ErrCodeParse   = "E203" // YAML or CUE syntax error, unknown YAML key
	ErrCodeSchema  = "E204" // Schema violation
	ErrCodeInvalid = "E205" // Semantic check failed (aliases, suffix format)
)

// LoadError is returned by Load and Parse.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported config extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))}
	}
}

// Load reads a config file, choosing the format by extension.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("failed to read config file: %v", err)}
	}
	return Parse(data, format, path)
}

// Parse decodes and validates config data. filename is used in error
// positions only.
func Parse(data []byte, format Format, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}

	var value cue.Value
	switch format {
	case FormatYAML:
		raw, err := decodeYAML(data)
		if err != nil {
			return nil, err
		}
		value = ctx.Encode(raw)
	case FormatCUE:
		value = ctx.CompileBytes(data, cue.Filename(filename))
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported config format %q", format)}
	}
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeParse, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: err.Error()}
	}
	return &cfg, nil
}

// decodeYAML decodes strictly so misspelled keys fail with a line number
// instead of being silently ignored.
func decodeYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	return &cfg, nil
}

// cueLoadError keeps the first position CUE reports.
func cueLoadError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: cueerrors.Details(err, nil)}
	le.Message = strings.TrimSpace(le.Message)
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
