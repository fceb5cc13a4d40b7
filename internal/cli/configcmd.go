package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/homesort/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: fmt.Sprintf(`Show or change the settings file. A missing file is created with
defaults on first use.

Settings: %v`, config.Keys),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.out.Render(a.cfg, func(w io.Writer) error {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(a.cfg); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			value, err := a.cfg.Get(args[0])
			if err != nil {
				return a.out.Fail(&configError{err: err})
			}
			return a.out.Render(map[string]string{args[0]: value}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, value)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change one setting",
		Example: `  homesort config set sort.by titleid`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.Set(args[0], args[1]); err != nil {
				return a.out.Fail(&configError{err: err})
			}
			if strings.EqualFold(args[0], "paths.db") {
				a.fileDB = a.cfg.Paths.DB
			}
			if err := a.saveConfig(); err != nil {
				return a.out.Fail(err)
			}
			value, _ := a.cfg.Get(args[0])
			return a.out.Render(map[string]string{args[0]: value}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s = %s\n", args[0], value)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.out.Render(map[string]string{"path": a.configPath}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, a.configPath)
				return err
			})
		},
	})

	return cmd
}
