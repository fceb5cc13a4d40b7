package order

import (
	"fmt"
	"slices"

	"github.com/roach88/homesort/internal/compare"
	"github.com/roach88/homesort/internal/layout"
)

// Sort orders m.Icons and m.ChildApps per opts and reassigns positions.
// ModeDefault leaves the model exactly as loaded.
func Sort(m *layout.Model, opts Options) error {
	switch opts.Mode {
	case ModeDefault:
		return nil
	case ModeAsc:
		slices.SortStableFunc(m.Icons, compare.Asc(opts.Key))
		slices.SortStableFunc(m.ChildApps, compare.ChildAsc(opts.Key))
	case ModeDesc:
		slices.SortStableFunc(m.Icons, compare.Desc(opts.Key))
		slices.SortStableFunc(m.ChildApps, compare.ChildDesc(opts.Key))
	default:
		return fmt.Errorf("sort: unknown mode %d", opts.Mode)
	}
	return Reposition(m, opts.Folders)
}

// Reposition walks m.Icons in their current order and assigns slots.
//
// Page icons get consecutive positions 0..MaxPos on m.Pages[0], then roll
// over to the next page in page-list order. Folder members get the next
// free index of their folder. Members of an unknown folder are left alone.
// Running past the last page fails with a layout overflow before any page
// icon beyond capacity is written.
func Reposition(m *layout.Model, policy FolderPolicy) error {
	folders := make(map[int]*layout.Folder, len(m.Folders))
	for i := range m.Folders {
		m.Folders[i].Index = 0
		folders[m.Folders[i].PageID] = &m.Folders[i]
	}

	pos, page := 0, 0
	for i := range m.Icons {
		if pos > layout.MaxPos {
			pos = 0
			page++
		}

		ic := &m.Icons[i]
		switch {
		case ic.InFolder() && policy != AppsOnly:
			if f, ok := folders[ic.PageID]; ok {
				ic.Pos = f.Index
				f.Index++
			}
		case !ic.InFolder() && policy != FoldersOnly:
			if page >= len(m.Pages) {
				return newOverflowError(i, len(m.Pages))
			}
			ic.Pos = pos
			ic.PageID = m.Pages[page].PageID
			pos++
		}
	}

	syncChildren(m)
	return nil
}

// syncChildren copies the new folder positions onto the mirrors, matching
// each mirror to the folder member it was built from.
func syncChildren(m *layout.Model) {
	type key struct {
		pageID         int
		title, titleID string
	}
	next := make(map[key][]int)
	for _, ic := range m.Icons {
		if ic.InFolder() {
			c := ic.Child()
			k := key{c.PageID, c.Title, c.TitleID}
			next[k] = append(next[k], ic.Pos)
		}
	}
	for i := range m.ChildApps {
		c := &m.ChildApps[i]
		k := key{c.PageID, c.Title, c.TitleID}
		if q := next[k]; len(q) > 0 {
			c.Pos = q[0]
			next[k] = q[1:]
		}
	}
}

// SwapPages exchanges the page numbers of pages[i] and pages[j].
func SwapPages(pages []layout.Page, i, j int) error {
	if i < 0 || i >= len(pages) || j < 0 || j >= len(pages) {
		return &Error{
			Code:    ErrCodeBadPage,
			Message: fmt.Sprintf("page index out of range (i=%d, j=%d, pages=%d)", i, j, len(pages)),
		}
	}
	pages[i].PageNo, pages[j].PageNo = pages[j].PageNo, pages[i].PageNo
	return nil
}
