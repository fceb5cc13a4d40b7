package layout

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// WriteTable renders the icon list the way the shell shows it: page icons
// and folder headers numbered in model order, with folder contents nested
// below their header.
func (m *Model) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tPAGE ID\tPAGE NO\tPOS")

	counter := 0
	for _, ic := range m.Icons {
		switch {
		case ic.Kind() == KindFolder:
			fmt.Fprintf(tw, "%d\t[%s]\t%d\t%d\t%d\n", counter, ic.Title, ic.PageID, ic.PageNo, ic.Pos)
			if folderNo, err := strconv.Atoi(ic.Reserved); err == nil {
				for _, c := range m.Children(folderNo) {
					fmt.Fprintf(tw, "\t  - %s\t%d\t-\t%d\n", c.Title, c.PageID, c.Pos)
				}
			}
			counter++
		case !ic.InFolder():
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", counter, ic.Title, ic.PageID, ic.PageNo, ic.Pos)
			counter++
		}
	}
	return tw.Flush()
}

// WritePages renders the page list.
func (m *Model) WritePages(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE ID\tPAGE NO")
	for _, p := range m.Pages {
		fmt.Fprintf(tw, "%d\t%d\n", p.PageID, p.PageNo)
	}
	return tw.Flush()
}
