// Package harness runs layout scenarios end to end against real database
// files.
//
// A scenario seeds a layout database, drives a sequence of steps through
// the same workflow the CLI uses, and checks the final layout.
//
// # Scenario Format
//
//	name: sort_title_asc
//	description: "Sorting by title packs page icons onto the first page"
//	layout:
//	  pages:
//	    - { page_id: 100, page_no: 0 }
//	  folders: [200]
//	  icons:
//	    - { page_id: 100, pos: 0, title: zelda, title_id: PCSE00001 }
//	steps:
//	  - action: sort
//	    sort: { by: title, mode: asc }
//	    expect: { state: done }
//	assertions:
//	  - type: placements
//	    placements:
//	      - { page_id: 100, pos: 0, title: zelda }
//
// # Step Actions
//
//   - sort: sort with the given options and write the result
//   - swap_pages: exchange two page numbers and write them
//   - save_loadout, restore_loadout, delete_loadout: loadout operations
//   - backup, restore_backup: the undo backup
//   - install: add an icon row to the live database
//
// # Assertion Types
//
//   - placements: the final icons in (pageId, pos) order
//   - pages: the final page list
//   - loadouts: the saved loadout names
//   - backup: whether an undo backup exists
//
// Each scenario runs in its own temporary directory with a fixed run id,
// so golden output is identical across runs.
package harness
