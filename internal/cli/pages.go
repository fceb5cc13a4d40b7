package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/order"
	"github.com/roach88/homesort/internal/workflow"
)

// NewPagesCommand creates the pages command.
func NewPagesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Show or reorder home-screen pages",
		Args:  cobra.NoArgs,
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
			return a.out.Render(m.Pages, m.WritePages)
		},
	}

	cmd.AddCommand(newPagesSwapCommand(opts))

	return cmd
}

func newPagesSwapCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "swap <page-no> <page-no>",
		Short:   "Exchange the positions of two pages",
		Example: `  homesort pages swap 0 2`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var nos [2]int
			for i, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid page number %q", arg))
				}
				nos[i] = n
			}

			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			m, err := a.repo.Load(ctx)
			if err != nil {
				return a.out.Fail(err)
			}

			i, err := pageIndex(m.Pages, nos[0])
			if err != nil {
				return a.out.Fail(err)
			}
			j, err := pageIndex(m.Pages, nos[1])
			if err != nil {
				return a.out.Fail(err)
			}
			if err := order.SwapPages(m.Pages, i, j); err != nil {
				return a.out.Fail(err)
			}

			if err := a.execute(ctx, workflow.ApplyPages{Pages: m.Pages}); err != nil {
				if errors.Is(err, errCancelled) {
					return a.cancelled()
				}
				return err
			}

			return a.out.Render(m.Pages, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "Swapped pages %d and %d.\n", nos[0], nos[1]); err != nil {
					return err
				}
				return m.WritePages(w)
			})
		},
	}
}

// pageIndex finds the page shown as pageNo.
func pageIndex(pages []layout.Page, pageNo int) (int, error) {
	for i, p := range pages {
		if p.PageNo == pageNo {
			return i, nil
		}
	}
	return -1, fmt.Errorf("page %d: %w", pageNo, errPageNotFound)
}
