// Package testutil builds layout databases and deterministic collaborators
// for tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/store"
)

// WriteAppDB creates a layout database at path holding m's pages and icons.
//
// Text fields equal to layout.NullText are stored as SQL NULL, and a
// numeric Reserved is stored as an integer, the way the shell writes them.
// Each icon also gets a command string derived from its title so tests can
// check that columns outside the model survive a rebuild. The page
// triggers are created after the rows so the fixture page numbers are
// stored as given.
func WriteAppDB(t testing.TB, path string, m *layout.Model) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(path, store.Create)
	require.NoError(t, err)
	defer s.Close()

	ddl := []string{store.PageTableDDL}
	ddl = append(ddl, store.PageIndexDDL...)
	ddl = append(ddl, store.IconTableDDL)
	ddl = append(ddl, store.IconIndexDDL...)
	for _, stmt := range ddl {
		_, err := s.Exec(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	for _, p := range m.Pages {
		_, err := s.Exec(ctx, "INSERT INTO tbl_appinfo_page(pageId, pageNo) VALUES (?, ?)", p.PageID, p.PageNo)
		require.NoError(t, err)
	}

	for _, ic := range m.Icons {
		require.NoError(t, insertIcon(ctx, s, ic), "insert icon %q", ic.Title)
	}

	for _, stmt := range store.PageTriggerDDL {
		_, err := s.Exec(ctx, stmt)
		require.NoError(t, err, stmt)
	}
}

// InsertIcon adds one icon row to an existing layout database, the way the
// shell does when an app is installed.
func InsertIcon(t testing.TB, path string, ic layout.Icon) {
	t.Helper()
	s, err := store.Open(path, store.ReadWrite)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, insertIcon(context.Background(), s, ic), "insert icon %q", ic.Title)
}

func insertIcon(ctx context.Context, s *store.Store, ic layout.Icon) error {
	_, err := s.Exec(ctx,
		`INSERT INTO tbl_appinfo_icon(pageId, pos, title, type, command, titleId, icon0Type, reserved01)
		 VALUES (?, ?, ?, 0, ?, ?, ?, ?)`,
		ic.PageID, ic.Pos, nullable(ic.Title), CommandFor(ic), nullable(ic.TitleID), ic.IconType, reservedValue(ic.Reserved))
	return err
}

// CommandFor is the command column WriteAppDB stores for ic.
func CommandFor(ic layout.Icon) string {
	return fmt.Sprintf("launch:%s:%s", ic.Title, ic.TitleID)
}

func nullable(s string) any {
	if s == layout.NullText {
		return nil
	}
	return s
}

func reservedValue(s string) any {
	if s == layout.NullText || s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// SampleLayout is a small home screen: two pages, one folder with two
// members, and a power tile. Pages are listed by pageId as Load returns
// them.
func SampleLayout() *layout.Model {
	null := layout.NullText
	return &layout.Model{
		Pages: []layout.Page{
			{PageID: 100, PageNo: 0},
			{PageID: 101, PageNo: 1},
		},
		Folders: []layout.Folder{{PageID: 200}},
		Icons: []layout.Icon{
			{PageID: 100, PageNo: 0, Pos: 0, Title: "zelda", TitleID: "PCSE00001", Reserved: null},
			{PageID: 100, PageNo: 0, Pos: 1, Title: "Mario", TitleID: "PCSE00002", Reserved: null},
			{PageID: 100, PageNo: 0, Pos: 2, Title: "Games", TitleID: null, IconType: layout.IconTypeFolder, Reserved: "-1"},
			{PageID: 100, PageNo: 0, Pos: 3, Title: "APPLE", TitleID: "PCSE00003", Reserved: null},
			{PageID: 101, PageNo: 1, Pos: 0, Title: null, TitleID: null, IconType: layout.IconTypePower, Reserved: null},
			{PageID: 101, PageNo: 1, Pos: 1, Title: "Browser", TitleID: null, Reserved: null},
			{PageID: 200, PageNo: -1, Pos: 0, Title: "Tetris", TitleID: "PCSE00010", Reserved: null},
			{PageID: 200, PageNo: -1, Pos: 1, Title: "chess", TitleID: "PCSE00011", Reserved: null},
		},
	}
}

// WithFolderPage returns the pages WriteAppDB must create for m, including
// the folder's own page row.
func WithFolderPage(m *layout.Model, folderPageID, folderPageNo int) *layout.Model {
	out := *m
	out.Pages = append(append([]layout.Page(nil), m.Pages...), layout.Page{PageID: folderPageID, PageNo: folderPageNo})
	return &out
}

// NewAppDB writes SampleLayout into a fresh temp directory and returns the
// database path together with a sibling iconlayout.ini.
func NewAppDB(t testing.TB) (dbPath, iniPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "app.db")
	iniPath = filepath.Join(dir, "iconlayout.ini")

	WriteAppDB(t, dbPath, WithFolderPage(SampleLayout(), 200, -1))
	require.NoError(t, os.WriteFile(iniPath, []byte("[layout]\nrows=2\n"), 0o644))
	return dbPath, iniPath
}
