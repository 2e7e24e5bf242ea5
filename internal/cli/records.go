package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/uniqname/internal/attr"
	"github.com/roach88/uniqname/internal/store"
)

// RecordOptions holds flags shared by commands that take attributes.
type RecordOptions struct {
	*RootOptions
	Set     []string // key=value attributes
	Exclude string   // record id treated as absent (resolve only)
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <entity> <name>",
		Short: "Preview the unique value for a name without writing",
		Long: `Preview the value create would store for a name.

Scope fields are given with --set; --exclude previews a rename of an
existing record, which never conflicts with itself.

Examples:
  uniqname resolve projects Foo
  uniqname resolve projects Foo --set organization_id=1
  uniqname resolve projects Foo --exclude 0190c0de-...`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "attribute as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.Exclude, "exclude", "", "record id to exclude from conflicts")

	return cmd
}

func runResolve(opts *RecordOptions, entity, name string, cmd *cobra.Command) error {
	s, attrs, err := openWithAttrs(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	attrs[s.repo.Config().For(entity).UniqueField] = attr.String(name)
	value, err := s.repo.Resolve(s.ctx, entity, attrs, opts.Exclude)
	if err != nil {
		return reportError(s.formatter, "resolve failed", err)
	}

	if opts.Format == "json" {
		return s.formatter.Success(map[string]string{
			"entity":    entity,
			"candidate": name,
			"value":     value,
		})
	}
	return s.formatter.Success(value)
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <entity> <name>",
		Short: "Create a record, suffixing the name if it is taken",
		Long: `Create a record. The name is trimmed (unless trim is off) and rewritten
when another record in the same scope already uses it.

Examples:
  uniqname create projects Foo
  uniqname create projects Foo --set organization_id=1 --set color=red`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "attribute as key=value (repeatable)")

	return cmd
}

func runCreate(opts *RecordOptions, entity, name string, cmd *cobra.Command) error {
	s, attrs, err := openWithAttrs(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	attrs[s.repo.Config().For(entity).UniqueField] = attr.String(name)
	rec, err := s.repo.Create(s.ctx, entity, attrs)
	if err != nil {
		return reportError(s.formatter, "create failed", err)
	}
	return outputRecord(s.formatter, rec)
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a record, suffixing the name if it is taken",
		Long: `Rename a record. Other attributes, including scope fields, can be
changed in the same write with --set.

Example:
  uniqname rename 0190c0de-... Bar --set organization_id=2`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "attribute as key=value (repeatable)")

	return cmd
}

func runRename(opts *RecordOptions, id, name string, cmd *cobra.Command) error {
	s, patch, err := openWithAttrs(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	current, err := s.repo.Get(s.ctx, id)
	if err != nil {
		return reportError(s.formatter, "rename failed", err)
	}
	patch[current.UniqueField] = attr.String(name)

	rec, err := s.repo.Update(s.ctx, id, patch)
	if err != nil {
		return reportError(s.formatter, "rename failed", err)
	}
	return outputRecord(s.formatter, rec)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Long: `Delete a record. The record is soft-deleted unless its entity sets
soft_deletes: false, in which case the row is removed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.repo.Delete(s.ctx, args[0]); err != nil {
				return reportError(s.formatter, "delete failed", err)
			}
			if rootOpts.Format == "json" {
				return s.formatter.Success(map[string]string{"id": args[0]})
			}
			return s.formatter.Success(fmt.Sprintf("deleted %s", args[0]))
		},
	}
	return cmd
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a soft-deleted record",
		Long: `Restore a soft-deleted record. If a live record took its name in the
meantime, the restored record is renamed like a new one would be.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.repo.Restore(s.ctx, args[0])
			if err != nil {
				return reportError(s.formatter, "restore failed", err)
			}
			return outputRecord(s.formatter, rec)
		},
	}
	return cmd
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Where   []string
	Trashed bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List an entity's records in write order",
		Long: `List an entity's records in write order.

Examples:
  uniqname list projects
  uniqname list projects --where organization_id=1 --trashed`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "scope filter as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Trashed, "trashed", false, "include soft-deleted records")

	return cmd
}

func runList(opts *ListOptions, entity string, cmd *cobra.Command) error {
	where, err := parseAssignments(opts.Where)
	if err != nil {
		return fail(newFormatter(opts.RootOptions, cmd), ExitCommandError, ErrCodeArgs, "invalid --where", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := s.repo.List(s.ctx, entity, store.ListOptions{
		Scope:          attr.ScopeOf(where, where.SortedKeys()),
		IncludeTrashed: opts.Trashed,
	})
	if err != nil {
		return reportError(s.formatter, "list failed", err)
	}

	if opts.Format == "json" {
		views := make([]recordView, len(recs))
		for i, rec := range recs {
			views[i] = viewOf(rec)
		}
		return s.formatter.Success(views)
	}

	tw := tabwriter.NewWriter(s.formatter.Writer, 0, 4, 2, ' ', 0)
	for _, rec := range recs {
		state := ""
		if rec.Trashed() {
			state = "trashed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.ID, rec.UniqueValue, state)
	}
	return tw.Flush()
}

// openWithAttrs parses --set before touching the database.
func openWithAttrs(opts *RecordOptions, cmd *cobra.Command) (*session, attr.Object, error) {
	attrs, err := parseAssignments(opts.Set)
	if err != nil {
		return nil, nil, fail(newFormatter(opts.RootOptions, cmd), ExitCommandError, ErrCodeArgs, "invalid --set", err)
	}
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return nil, nil, err
	}
	return s, attrs, nil
}
