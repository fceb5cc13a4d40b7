package cli

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var pages bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the current icon layout",
		Long: `List every home-screen icon in layout order. Folders are shown in
brackets with their contents indented below them.`,
		Example: `  homesort list
  homesort list --pages
  homesort list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.repo.Load(cmd.Context())
			if err != nil {
				return a.out.Fail(err)
			}
			if pages {
				return a.out.Render(m.Pages, m.WritePages)
			}
			return a.out.Render(m, m.WriteTable)
		},
	}

	cmd.Flags().BoolVar(&pages, "pages", false, "list pages instead of icons")

	return cmd
}
