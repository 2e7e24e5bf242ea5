package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/config"
	"github.com/roach88/uniqname/internal/records"
	"github.com/roach88/uniqname/internal/resolver"
	"github.com/roach88/uniqname/internal/store"
)

// session is an open store plus the repository over it.
type session struct {
	ctx       context.Context
	store     *store.Store
	repo      *records.Repository
	formatter *OutputFormatter
}

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession loads the config, opens the database and builds a repository
// whose resolver events go to the verbose log.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	f := newFormatter(opts, cmd)

	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, reportConfigError(f, err)
		}
		cfg = loaded
		f.VerboseLog("Loaded config %s", opts.Config)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	f.VerboseLog("Opened database %s", opts.Database)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := records.New(ctx, st, cfg, records.WithTracer(resolver.TracerFunc(func(e resolver.Event) {
		f.VerboseLog("%s", describeEvent(e))
	})))
	if err != nil {
		st.Close()
		return nil, fail(f, ExitCommandError, ErrCodeDatabase, "failed to read database", err)
	}

	return &session{ctx: ctx, store: st, repo: repo, formatter: f}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// describeEvent renders a resolver event for the verbose log.
func describeEvent(e resolver.Event) string {
	switch e.Kind {
	case resolver.EventAttempt:
		return fmt.Sprintf("attempt %d: %s=%q taken=%t", e.Attempt, e.Field, e.Value, e.Taken)
	case resolver.EventScan:
		return fmt.Sprintf("scan: base %q, highest suffix %d", e.Value, e.Number)
	case resolver.EventRecheck:
		return fmt.Sprintf("recheck %d: %s=%q taken=%t", e.Number, e.Field, e.Value, e.Taken)
	default:
		return fmt.Sprintf("%s: %s=%q", e.Kind, e.Field, e.Value)
	}
}

// fail writes an error response and returns the ExitError for it.
func fail(f *OutputFormatter, exitCode int, code, message string, err error) error {
	detail := message
	if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	if outErr := f.Error(code, detail, nil); outErr != nil {
		return outErr
	}
	exitErr := WrapExitError(exitCode, message, err)
	exitErr.Reported = true
	return exitErr
}

// reportError maps a repository error to its code and exit status.
func reportError(f *OutputFormatter, message string, err error) error {
	code, exit := classify(err)
	return fail(f, exit, code, message, err)
}

// classify returns the CLI error code and exit status for err.
func classify(err error) (string, int) {
	var rerr *resolver.Error
	switch {
	case errors.As(err, &rerr):
		switch rerr.Code {
		case resolver.ErrCodeConfig:
			return ErrCodeConfig, ExitCommandError
		case resolver.ErrCodeGenerator:
			return ErrCodeGenerator, ExitFailure
		default:
			return ErrCodeStore, ExitCommandError
		}
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound, ExitFailure
	case errors.Is(err, records.ErrNotTrashed):
		return ErrCodeNotTrashed, ExitFailure
	case store.IsUniqueViolation(err):
		return ErrCodeConflict, ExitFailure
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// reportConfigError reports a config load failure with its E2xx code.
func reportConfigError(f *OutputFormatter, err error) error {
	var lerr *config.LoadError
	if errors.As(err, &lerr) {
		return fail(f, ExitCommandError, lerr.Code, "invalid config", err)
	}
	return fail(f, ExitCommandError, ErrCodeGeneric, "invalid config", err)
}

// parseAssignments turns repeated key=value flags into attributes. Values
// are parsed with attr.ParseLiteral.
func parseAssignments(pairs []string) (attr.Object, error) {
	obj := attr.Object{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: want key=value", p)
		}
		obj[key] = attr.ParseLiteral(value)
	}
	return obj, nil
}

// recordView is the JSON shape of a record.
type recordView struct {
	ID      string      `json:"id"`
	Entity  string      `json:"entity"`
	Field   string      `json:"field"`
	Value   string      `json:"value"`
	Attrs   attr.Object `json:"attrs"`
	Seq     int64       `json:"seq"`
	Trashed bool        `json:"trashed"`
}

func viewOf(rec store.Record) recordView {
	return recordView{
		ID:      rec.ID,
		Entity:  rec.Entity,
		Field:   rec.UniqueField,
		Value:   rec.UniqueValue,
		Attrs:   rec.Attrs,
		Seq:     rec.Seq,
		Trashed: rec.Trashed(),
	}
}

// outputRecord prints one record: its id and value in text mode.
func outputRecord(f *OutputFormatter, rec store.Record) error {
	if f.Format == "json" {
		return f.Success(viewOf(rec))
	}
	return f.Success(fmt.Sprintf("%s\t%s", rec.ID, rec.UniqueValue))
}
