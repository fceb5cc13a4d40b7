package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/homesort/internal/power"
	"github.com/roach88/homesort/internal/prompt"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DB         string // overrides paths.db from the config file
	Yes        bool   // answer yes to every confirmation

	// Prompter asks for confirmations and loadout names. If nil, a
	// terminal prompt on stdin is used.
	Prompter prompt.Prompter

	// Signal is sent while a write holds the power lock. If nil, nothing
	// is sent; a desktop host has no auto-suspend to hold off.
	Signal power.Signal
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the homesort CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "homesort",
		Short: "Sort the home-screen layout database",
		Long: `homesort reads the home-screen icon layout database, orders icons and
folder contents by title or title id, and writes the new layout back.

Every write works on a copy of the database and replaces the live file
only once the copy is complete. An undo backup is taken before each write,
and named loadouts let you keep and restore whole layouts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "settings file (default homesort/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "layout database (overrides the settings file)")
	cmd.PersistentFlags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSortCommand(opts))
	cmd.AddCommand(NewPagesCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewLoadoutCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
