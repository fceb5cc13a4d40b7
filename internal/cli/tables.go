package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the layout database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			tables, err := a.repo.Tables(cmd.Context())
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(tables, func(w io.Writer) error {
				for _, t := range tables {
					if _, err := fmt.Fprintln(w, t); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
