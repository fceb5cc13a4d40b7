package repository

import (
	"bytes"
	"cmp"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/homesort/internal/compare"
	"github.com/roach88/homesort/internal/config"
	"github.com/roach88/homesort/internal/fsutil"
	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/order"
	"github.com/roach88/homesort/internal/store"
	"github.com/roach88/homesort/internal/testutil"
)

type countingLock struct {
	locked         bool
	locks, unlocks int
}

func (l *countingLock) Lock()   { l.locked = true; l.locks++ }
func (l *countingLock) Unlock() { l.locked = false; l.unlocks++ }

type faultyFS struct {
	fsutil.FS
	renameErr error
}

func (f faultyFS) Rename(ctx context.Context, oldPath, newPath string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.FS.Rename(ctx, oldPath, newPath)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastFS() fsutil.FS {
	return fsutil.New(fsutil.Options{MaxRetries: 0})
}

func newTestRepo(t *testing.T, opts ...Option) (*Repository, string) {
	t.Helper()
	dbPath, _ := testutil.NewAppDB(t)
	base := []Option{
		WithFS(fastFS()),
		WithLogger(quietLogger()),
		WithRunIDs(testutil.NewFixedRunID("run-test")),
	}
	return New(config.Paths{DB: dbPath}, append(base, opts...)...), dbPath
}

// placement is the part of an icon a write is expected to change.
type placement struct {
	Title, TitleID string
	PageID, Pos    int
}

func placements(icons []layout.Icon) []placement {
	out := make([]placement, 0, len(icons))
	for _, ic := range icons {
		out = append(out, placement{ic.Title, ic.TitleID, ic.PageID, ic.Pos})
	}
	slices.SortFunc(out, func(a, b placement) int {
		if c := cmp.Compare(a.PageID, b.PageID); c != 0 {
			return c
		}
		return cmp.Compare(a.Pos, b.Pos)
	})
	return out
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestLoad_SampleLayout(t *testing.T) {
	repo, _ := newTestRepo(t)

	m, err := repo.Load(context.Background())
	require.NoError(t, err)

	want := testutil.SampleLayout()
	assert.Equal(t, want.Icons, m.Icons)
	assert.Equal(t, want.Pages, m.Pages)
	assert.Equal(t, want.Folders, m.Folders)
	assert.Equal(t, []layout.ChildIcon{
		{PageID: 200, PageNo: -1, Pos: 0, Title: "Tetris", TitleID: "PCSE00010"},
		{PageID: 200, PageNo: -1, Pos: 1, Title: "chess", TitleID: "PCSE00011"},
	}, m.ChildApps)
	require.NoError(t, m.Validate())
}

func TestLoad_FreshModelEachCall(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Load(ctx)
	require.NoError(t, err)
	first.Icons[0].Title = "changed"

	second, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "zelda", second.Icons[0].Title)
	assert.Len(t, second.Icons, len(testutil.SampleLayout().Icons))
}

func TestLoad_KeepsLongFieldsOnIcons(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	long := string(bytes.Repeat([]byte("t"), 200))
	testutil.WriteAppDB(t, path, testutil.WithFolderPage(&layout.Model{
		Pages: []layout.Page{{PageID: 1, PageNo: 0}},
		Icons: []layout.Icon{
			{PageID: 1, PageNo: 0, Pos: 0, Title: long, TitleID: "ABCDEFGHIJKLMNOPQRST", Reserved: layout.NullText},
			{PageID: 2, PageNo: -1, Pos: 0, Title: long, TitleID: "ABCDEFGHIJKLMNOPQRST", Reserved: layout.NullText},
		},
	}, 2, -1))

	m, err := New(config.Paths{DB: path}, WithLogger(quietLogger())).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, m.Icons, 2)
	for _, ic := range m.Icons {
		assert.Equal(t, long, ic.Title)
		assert.Equal(t, "ABCDEFGHIJKLMNOPQRST", ic.TitleID)
	}

	require.Len(t, m.ChildApps, 1)
	assert.Len(t, m.ChildApps[0].Title, layout.TitleMax)
	assert.Equal(t, "ABCDEFGHIJKLMNO", m.ChildApps[0].TitleID)
}

func TestPersist_LongTitleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	long := string(bytes.Repeat([]byte("z"), 140))
	testutil.WriteAppDB(t, path, &layout.Model{
		Pages: []layout.Page{{PageID: 1, PageNo: 0}},
		Icons: []layout.Icon{
			{PageID: 1, PageNo: 0, Pos: 0, Title: long, TitleID: layout.NullText, Reserved: layout.NullText},
			{PageID: 1, PageNo: 0, Pos: 1, Title: "AAA", TitleID: "PCSE00100", Reserved: layout.NullText},
		},
	})
	repo := New(config.Paths{DB: path}, WithFS(fastFS()), WithLogger(quietLogger()))
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, order.Sort(m, order.Options{Mode: order.ModeAsc, Key: compare.KeyTitle}))
	require.NoError(t, m.Validate())
	require.NoError(t, repo.Persist(ctx, m.Icons))

	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []placement{
		{"AAA", "PCSE00100", 1, 0},
		{long, layout.NullText, 1, 1},
	}, placements(reloaded.Icons))
}

func TestLoad_MissingDatabase(t *testing.T) {
	repo := New(config.Paths{DB: filepath.Join(t.TempDir(), "missing.db")}, WithLogger(quietLogger()))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err), "got %v", err)
}

func TestLoad_QueryFailed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	s, err := store.Open(path, store.Create)
	require.NoError(t, err)
	_, err = s.Exec(context.Background(), "CREATE TABLE unrelated(a)")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = New(config.Paths{DB: path}, WithLogger(quietLogger())).Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsQueryFailed(err), "got %v", err)

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Statement, "tbl_appinfo_icon")
}

func TestLoad_DefaultSortKeepsCoordinates(t *testing.T) {
	repo, _ := newTestRepo(t)

	m, err := repo.Load(context.Background())
	require.NoError(t, err)
	before := placements(m.Icons)

	require.NoError(t, order.Sort(m, order.Options{Mode: order.ModeDefault}))
	assert.Equal(t, before, placements(m.Icons))
}

func TestPersist_RoundTrip(t *testing.T) {
	lock := &countingLock{}
	repo, dbPath := newTestRepo(t, WithPower(lock))
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, order.Sort(m, order.Options{Mode: order.ModeAsc, Key: compare.KeyTitle}))

	require.NoError(t, repo.Persist(ctx, m.Icons))

	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, placements(m.Icons), placements(reloaded.Icons))
	assert.Equal(t, []placement{
		{layout.NullText, layout.NullText, 100, 0},
		{"APPLE", "PCSE00003", 100, 1},
		{"Browser", layout.NullText, 100, 2},
		{"Games", layout.NullText, 100, 3},
		{"Mario", "PCSE00002", 100, 4},
		{"zelda", "PCSE00001", 100, 5},
		{"chess", "PCSE00011", 200, 0},
		{"Tetris", "PCSE00010", 200, 1},
	}, placements(reloaded.Icons))
	require.NoError(t, reloaded.Validate())

	// Page 101 lost its only icons, so it no longer shows up.
	assert.Equal(t, []layout.Page{{PageID: 100, PageNo: 0}}, reloaded.Pages)

	assert.False(t, fastFS().Exists(repo.WorkingPath()), "working file should be gone")
	assert.Equal(t, 1, lock.locks)
	assert.Equal(t, 1, lock.unlocks)
	assert.False(t, lock.locked)

	s, err := store.Open(dbPath, store.ReadOnly)
	require.NoError(t, err)
	defer s.Close()

	var command string
	require.NoError(t, s.QueryRow(ctx, "SELECT command FROM tbl_appinfo_icon WHERE titleId = 'PCSE00001'").Scan(&command))
	assert.Equal(t, testutil.CommandFor(testutil.SampleLayout().Icons[0]), command, "unmodelled columns must survive")

	var ddl string
	require.NoError(t, s.QueryRow(ctx, "SELECT sql FROM sqlite_master WHERE name = 'tbl_appinfo_icon'").Scan(&ddl))
	assert.Equal(t, store.IconTableDDL, ddl)

	for _, idx := range []string{"idx_icon_pos", "idx_icon_title"} {
		var n int
		require.NoError(t, s.QueryRow(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", idx).Scan(&n))
		assert.Equal(t, 1, n, idx)
	}

	hasScratch, err := s.HasTable(ctx, store.IconSortTable)
	require.NoError(t, err)
	assert.False(t, hasScratch)
}

func TestPersist_UnaddressableIconLeavesLiveUntouched(t *testing.T) {
	lock := &countingLock{}
	repo, dbPath := newTestRepo(t, WithPower(lock))
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	before := readFile(t, dbPath)

	anonymous := layout.Icon{PageID: 101, Pos: 5, Title: layout.NullText, TitleID: layout.NullText, Reserved: layout.NullText}
	icons := append(m.Icons[:3:3], anonymous)

	err = repo.Persist(ctx, icons)
	require.Error(t, err)
	assert.True(t, IsUpdateFailed(err), "got %v", err)
	assert.ErrorIs(t, err, layout.ErrUnaddressable)

	assert.Equal(t, before, readFile(t, dbPath), "live file must be byte-identical")
	assert.False(t, fastFS().Exists(repo.WorkingPath()), "working file should be discarded")
	assert.False(t, lock.locked, "power lock must be released on failure")

	s, err := store.Open(dbPath, store.ReadOnly)
	require.NoError(t, err)
	defer s.Close()
	hasScratch, err := s.HasTable(ctx, store.IconSortTable)
	require.NoError(t, err)
	assert.False(t, hasScratch)
}

func TestPersist_DuplicateSlotFailsRebuild(t *testing.T) {
	repo, dbPath := newTestRepo(t)
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	before := readFile(t, dbPath)

	// Move Mario onto zelda's slot without moving zelda away.
	m.Icons[1].Pos = 0

	err = repo.Persist(ctx, m.Icons)
	require.Error(t, err)
	assert.True(t, IsUpdateFailed(err), "got %v", err)

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Statement, "INSERT INTO tbl_appinfo_icon")

	assert.Equal(t, before, readFile(t, dbPath))
	assert.False(t, fastFS().Exists(repo.WorkingPath()))
}

func TestPersist_UpdateFailedCarriesPredicate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)

	// A cancelled context makes the first UPDATE fail after the scratch
	// table exists.
	err = repo.rewrite(ctx, rebuild{
		table:   store.IconTable,
		scratch: store.IconSortTable,
		update: func(ctx context.Context, tx *sql.Tx, log *slog.Logger) error {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			return updateIcons(cancelled, tx, m.Icons, log)
		},
	})
	require.Error(t, err)
	assert.True(t, IsUpdateFailed(err))

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, `titleId = "PCSE00001"`, re.Predicate)
	assert.Equal(t, repo.WorkingPath(), re.Path)
}

func TestPersist_SwapFailureKeepsWorkingFile(t *testing.T) {
	fs := faultyFS{FS: fastFS(), renameErr: errors.New("device busy")}
	repo, dbPath := newTestRepo(t, WithFS(fs))
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	before := readFile(t, dbPath)
	require.NoError(t, order.Sort(m, order.Options{Mode: order.ModeAsc, Key: compare.KeyTitle}))

	err = repo.Persist(ctx, m.Icons)
	require.Error(t, err)
	assert.True(t, IsSwapFailed(err), "got %v", err)

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, repo.WorkingPath(), re.Path)

	assert.Equal(t, before, readFile(t, dbPath), "live file must be untouched")
	require.True(t, fastFS().Exists(repo.WorkingPath()), "working file must be kept")

	// The kept working file is a complete, sorted database.
	kept, err := New(config.Paths{DB: repo.WorkingPath()}, WithLogger(quietLogger())).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, placements(m.Icons), placements(kept.Icons))
}

func TestPersist_MissingLiveIsBackupFailed(t *testing.T) {
	repo := New(config.Paths{DB: filepath.Join(t.TempDir(), "missing.db")},
		WithFS(fastFS()), WithLogger(quietLogger()))

	err := repo.Persist(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsBackupFailed(err), "got %v", err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPersist_LogsRunID(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo, _ := newTestRepo(t, WithLogger(logger), WithRunIDs(testutil.NewFixedRunID("run-42")))
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Persist(ctx, m.Icons))

	assert.Contains(t, logs.String(), "run=run-42")
	assert.Contains(t, logs.String(), "layout written")
}

func TestPersistPages_SwapsAndKeepsTriggers(t *testing.T) {
	lock := &countingLock{}
	repo, dbPath := newTestRepo(t, WithPower(lock))
	ctx := context.Background()

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, order.SwapPages(m.Pages, 0, 1))

	require.NoError(t, repo.PersistPages(ctx, m.Pages))
	assert.Equal(t, 1, lock.locks)
	assert.False(t, lock.locked)

	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []layout.Page{{PageID: 100, PageNo: 1}, {PageID: 101, PageNo: 0}}, reloaded.Pages)
	assert.Equal(t, []layout.Folder{{PageID: 200}}, reloaded.Folders)

	s, err := store.Open(dbPath, store.ReadWrite)
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.Query(ctx, "SELECT name FROM sqlite_master WHERE type = 'trigger' ORDER BY name")
	require.NoError(t, err)
	var triggers []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		triggers = append(triggers, name)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"tgr_deletePage2", "tgr_insertPage2"}, triggers)

	// Inserting a page at 0 shifts the others up; the folder page stays.
	_, err = s.Exec(ctx, "INSERT INTO tbl_appinfo_page(pageId, pageNo) VALUES (102, 0)")
	require.NoError(t, err)

	got := map[int]int{}
	rows, err = s.Query(ctx, "SELECT pageId, pageNo FROM tbl_appinfo_page")
	require.NoError(t, err)
	for rows.Next() {
		var id, no int
		require.NoError(t, rows.Scan(&id, &no))
		got[id] = no
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, map[int]int{100: 2, 101: 1, 102: 0, 200: -1}, got)

	// Deleting it shifts them back.
	_, err = s.Exec(ctx, "DELETE FROM tbl_appinfo_page WHERE pageId = 102")
	require.NoError(t, err)
	var no100 int
	require.NoError(t, s.QueryRow(ctx, "SELECT pageNo FROM tbl_appinfo_page WHERE pageId = 100").Scan(&no100))
	assert.Equal(t, 1, no100)
}

func TestPersistPages_FailureLeavesLiveUntouched(t *testing.T) {
	repo, dbPath := newTestRepo(t)
	before := readFile(t, dbPath)

	// pageNo is NOT NULL in the rebuilt table.
	pages := []layout.Page{{PageID: 100, PageNo: 0}}
	err := repo.rewrite(context.Background(), rebuild{
		table:   store.PageTable,
		scratch: store.PageSortTable,
		update: func(ctx context.Context, tx *sql.Tx, log *slog.Logger) error {
			if err := updatePages(ctx, tx, pages, log); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "UPDATE "+store.PageSortTable+" SET pageNo = NULL WHERE pageId = 101")
			return err
		},
		finish: []string{
			"DROP TABLE " + store.PageTable,
			store.PageTableDDL,
			"INSERT INTO " + store.PageTable + " SELECT * FROM " + store.PageSortTable,
		},
	})
	require.Error(t, err)
	assert.True(t, IsUpdateFailed(err), "got %v", err)
	assert.Equal(t, before, readFile(t, dbPath))
	assert.False(t, fastFS().Exists(repo.WorkingPath()))
}

func writeTitles(t *testing.T, titles ...string) string {
	t.Helper()
	m := &layout.Model{Pages: []layout.Page{{PageID: 1, PageNo: 0}}}
	for i, title := range titles {
		m.Icons = append(m.Icons, layout.Icon{
			PageID: 1, Pos: i, Title: title, TitleID: layout.NullText, Reserved: layout.NullText,
		})
	}
	path := filepath.Join(t.TempDir(), "titles.db")
	testutil.WriteAppDB(t, path, m)
	return path
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name  string
		live  []string
		snap  []string
		stale bool
	}{
		{"live has new title", []string{"A", "B", "C"}, []string{"A", "B"}, true},
		{"snapshot is superset", []string{"A", "B", "C"}, []string{"A", "B", "C", "D"}, false},
		{"same titles in other order", []string{"C", "A", "B"}, []string{"B", "C", "A"}, false},
		{"duplicates do not matter", []string{"A", "A", "B"}, []string{"A", "B"}, false},
		{"case matters", []string{"a"}, []string{"A"}, true},
		{"null title is a value", []string{"A", layout.NullText}, []string{"A"}, true},
		{"empty live", nil, []string{"A"}, false},
		{"empty snapshot", []string{"A"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := writeTitles(t, tt.live...)
			snap := writeTitles(t, tt.snap...)

			repo := New(config.Paths{DB: live}, WithLogger(quietLogger()))
			stale, err := repo.Compare(context.Background(), snap)
			require.NoError(t, err)
			assert.Equal(t, tt.stale, stale)
		})
	}
}

func TestCompare_MissingSnapshot(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Compare(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}

func TestTables(t *testing.T) {
	repo, _ := newTestRepo(t)

	tables, err := repo.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tbl_appinfo_icon", "tbl_appinfo_page"}, tables)
}

func TestErrorCodes(t *testing.T) {
	err := error(&Error{Code: ErrCodeSwapFailed, Op: "replace live database", Path: "/x.bkp", Err: errors.New("busy")})
	wrapped := errors.Join(errors.New("outer"), err)

	assert.True(t, IsSwapFailed(wrapped))
	assert.False(t, IsUpdateFailed(wrapped))
	assert.Equal(t, ErrCodeSwapFailed, Code(wrapped))
	assert.Equal(t, ErrorCode(""), Code(errors.New("plain")))
	assert.Equal(t, "SWAP_FAILED: replace live database [/x.bkp]: busy", err.Error())
}
