package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/homesort/internal/order"
	"github.com/roach88/homesort/internal/workflow"
)

// SortOptions holds flags for the sort command.
type SortOptions struct {
	*RootOptions
	By      string
	Mode    string
	Folders string
	DryRun  bool
	Save    bool
}

// sortResult is the JSON payload of a sort.
type sortResult struct {
	Applied bool   `json:"applied"`
	By      string `json:"by"`
	Mode    string `json:"mode"`
	Folders string `json:"folders"`
	Icons   int    `json:"icons"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SortOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort the icons and write the new layout",
		Long: `Sort home-screen icons and folder contents by title or title id and
write the result back to the layout database.

Settings default to the sort section of the settings file. An undo backup
is taken before anything is written; "homesort restore" puts it back.`,
		Example: `  homesort sort
  homesort sort --by titleid --mode desc
  homesort sort --folders apps --dry-run
  homesort sort --mode asc --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.By, "by", "", "sort key (title|titleid)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "sort mode (default|asc|desc)")
	cmd.Flags().StringVar(&opts.Folders, "folders", "", "what to reposition (both|apps|folders)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show the sorted layout without writing it")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "store the chosen settings in the settings file")

	return cmd
}

func runSort(cmd *cobra.Command, opts *SortOptions) error {
	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	overrides := [][2]string{
		{"sort.by", opts.By},
		{"sort.mode", opts.Mode},
		{"sort.folders", opts.Folders},
	}
	for _, kv := range overrides {
		if kv[1] == "" {
			continue
		}
		if err := a.cfg.Set(kv[0], kv[1]); err != nil {
			return a.out.Fail(&configError{err: err})
		}
	}
	if opts.Save {
		if err := a.saveConfig(); err != nil {
			return a.out.Fail(err)
		}
	}

	orderOpts, err := a.cfg.OrderOptions()
	if err != nil {
		return a.out.Fail(&configError{err: err})
	}

	ctx := cmd.Context()
	m, err := a.repo.Load(ctx)
	if err != nil {
		return a.out.Fail(err)
	}
	if err := order.Sort(m, orderOpts); err != nil {
		return a.out.Fail(err)
	}
	if err := m.Validate(); err != nil {
		return a.out.Fail(fmt.Errorf("sorted layout is inconsistent: %w", err))
	}
	a.logger.Debug("layout sorted", "icons", len(m.Icons), "mode", orderOpts.Mode, "key", orderOpts.Key)

	result := sortResult{
		By:      a.cfg.Sort.By,
		Mode:    a.cfg.Sort.Mode,
		Folders: a.cfg.Sort.Folders,
		Icons:   len(m.Icons),
	}

	if opts.DryRun {
		return a.out.Render(m, m.WriteTable)
	}

	if err := a.execute(ctx, workflow.ApplySort{Icons: m.Icons}); err != nil {
		if errors.Is(err, errCancelled) {
			return a.cancelled()
		}
		return err
	}

	result.Applied = true
	return a.out.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Sorted %d icons by %s (%s, %s).\n", result.Icons, result.By, result.Mode, result.Folders)
		return err
	})
}
