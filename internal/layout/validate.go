package layout

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of the model: every page icon
// references a known page, every folder member a known folder, and no two
// icons share a slot on the same page or in the same folder.
func (m *Model) Validate() error {
	pages := make(map[int]bool, len(m.Pages))
	for _, p := range m.Pages {
		pages[p.PageID] = true
	}
	folders := make(map[int]bool, len(m.Folders))
	for _, f := range m.Folders {
		folders[f.PageID] = true
	}

	type slot struct{ pageID, pos int }
	seen := make(map[slot]string, len(m.Icons))

	var errs []error
	for _, ic := range m.Icons {
		if ic.InFolder() {
			if !folders[ic.PageID] {
				errs = append(errs, fmt.Errorf("icon %q: folder page %d not found", ic.Title, ic.PageID))
			}
		} else if !pages[ic.PageID] {
			errs = append(errs, fmt.Errorf("icon %q: page %d not found", ic.Title, ic.PageID))
		}

		if ic.Pos < 0 || ic.Pos > MaxPos {
			errs = append(errs, fmt.Errorf("icon %q: pos %d out of range [0,%d]", ic.Title, ic.Pos, MaxPos))
			continue
		}

		key := slot{ic.PageID, ic.Pos}
		if other, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("icon %q: slot (pageId=%d, pos=%d) already taken by %q",
				ic.Title, ic.PageID, ic.Pos, other))
			continue
		}
		seen[key] = ic.Title
	}

	return errors.Join(errs...)
}
