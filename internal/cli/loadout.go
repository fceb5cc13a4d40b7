package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/homesort/internal/snapshot"
	"github.com/roach88/homesort/internal/workflow"
)

// NewLoadoutCommand creates the loadout command group.
func NewLoadoutCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadout",
		Short: "Save and restore named layouts",
		Long: `A loadout is a named copy of the layout database, plus the layout
metadata file when one is configured. Loadouts live in the loadouts
directory under the data directory.`,
	}

	cmd.AddCommand(newLoadoutSaveCommand(opts))
	cmd.AddCommand(newLoadoutRestoreCommand(opts))
	cmd.AddCommand(newLoadoutDeleteCommand(opts))
	cmd.AddCommand(newLoadoutListCommand(opts))

	return cmd
}

func newLoadoutSaveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name]",
		Short: "Save the current layout as a loadout",
		Long: `Save the current layout under name. Without a name you are asked for
one. An existing loadout with the same name is replaced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				name, err = a.prompter.GetText("Loadout name", "")
				if err != nil {
					return a.out.Fail(err)
				}
				if name == "" {
					return a.cancelled()
				}
			}

			saved, err := a.snapshots.Backup(cmd.Context(), name)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(map[string]string{"name": saved}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Loadout %q saved.\n", saved)
				return err
			})
		},
	}
}

func newLoadoutRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name>",
		Short: "Replace the current layout with a loadout",
		Long: `Replace the live layout with loadout name. If the loadout is missing
apps installed since it was saved you are warned and asked again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadoutAction(cmd, opts, args[0], func(name string) workflow.Action {
				return workflow.RestoreLoadout{Name: name}
			}, "Loadout %q restored.\n")
		},
	}
}

func newLoadoutDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a loadout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadoutAction(cmd, opts, args[0], func(name string) workflow.Action {
				return workflow.DeleteLoadout{Name: name}
			}, "Loadout %q deleted.\n")
		},
	}
}

// runLoadoutAction confirms and runs a restore or delete of one loadout.
func runLoadoutAction(cmd *cobra.Command, opts *RootOptions, arg string, action func(string) workflow.Action, done string) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name, err := snapshot.Normalize(arg)
	if err != nil {
		return a.out.Fail(err)
	}
	if _, err := a.snapshots.Path(name); err != nil {
		return a.out.Fail(err)
	}

	if err := a.execute(cmd.Context(), action(name)); err != nil {
		if errors.Is(err, errCancelled) {
			return a.cancelled()
		}
		return err
	}
	return a.out.Render(map[string]string{"name": name}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, done, name)
		return err
	})
}

func newLoadoutListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved loadouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			loadouts, err := a.snapshots.List(cmd.Context())
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(loadouts, func(w io.Writer) error {
				return writeLoadouts(w, loadouts)
			})
		},
	}
}

func writeLoadouts(w io.Writer, loadouts []snapshot.Loadout) error {
	if len(loadouts) == 0 {
		_, err := fmt.Fprintln(w, "No loadouts saved.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSAVED\tINI")
	for _, l := range loadouts {
		ini := "no"
		if l.HasINI {
			ini = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Modified.Format("2006-01-02 15:04"), ini)
	}
	return tw.Flush()
}
