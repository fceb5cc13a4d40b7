package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/homesort/internal/compare"
	"github.com/roach88/homesort/internal/config"
	"github.com/roach88/homesort/internal/fsutil"
	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/order"
	"github.com/roach88/homesort/internal/repository"
	"github.com/roach88/homesort/internal/snapshot"
	"github.com/roach88/homesort/internal/store"
	"github.com/roach88/homesort/internal/testutil"
)

type fakeLayout struct {
	calls      []string
	persistErr error
	stale      bool
	comparedTo string
}

func (f *fakeLayout) Persist(ctx context.Context, icons []layout.Icon) error {
	f.calls = append(f.calls, "persist")
	return f.persistErr
}

func (f *fakeLayout) PersistPages(ctx context.Context, pages []layout.Page) error {
	f.calls = append(f.calls, "persist-pages")
	return f.persistErr
}

func (f *fakeLayout) Compare(ctx context.Context, snapshotDB string) (bool, error) {
	f.calls = append(f.calls, "compare")
	f.comparedTo = snapshotDB
	return f.stale, nil
}

type fakeSnapshots struct {
	calls     []string
	backupErr error
}

func (f *fakeSnapshots) WholeDbBackup(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "backup")
	return "/backups/app.db", f.backupErr
}

func (f *fakeSnapshots) WholeDbRestore(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "restore-backup")
	return "/backups/app.db", nil
}

func (f *fakeSnapshots) Restore(ctx context.Context, name string) error {
	f.calls = append(f.calls, "restore:"+name)
	return nil
}

func (f *fakeSnapshots) Delete(ctx context.Context, name string) error {
	f.calls = append(f.calls, "delete:"+name)
	return nil
}

func (f *fakeSnapshots) Path(name string) (string, error) {
	return "/loadouts/" + name + ".db", nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkflow_SortBacksUpFirst(t *testing.T) {
	l, s := &fakeLayout{}, &fakeSnapshots{}
	w := New(l, s, quietLogger())

	require.NoError(t, w.Request(ApplySort{}))
	assert.Equal(t, StateConfirm, w.State())
	assert.Contains(t, w.Pending().Prompt(), "sorting method")

	res := w.Confirm(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, StateDone, w.State())
	assert.Nil(t, w.Pending())
	assert.Equal(t, []string{"backup"}, s.calls)
	assert.Equal(t, []string{"persist"}, l.calls)
}

func TestWorkflow_BackupFailureStopsWrite(t *testing.T) {
	l := &fakeLayout{}
	s := &fakeSnapshots{backupErr: errors.New("disk full")}
	w := New(l, s, quietLogger())

	require.NoError(t, w.Request(ApplyPages{}))
	res := w.Confirm(context.Background())
	assert.Equal(t, StateError, res.State)
	assert.ErrorContains(t, res.Err, "disk full")
	assert.Empty(t, l.calls, "no write without a backup")
	assert.Equal(t, res.Err, w.Err())

	w.Reset()
	assert.Equal(t, StateNone, w.State())
	assert.NoError(t, w.Err())
}

func TestWorkflow_PersistFailure(t *testing.T) {
	l := &fakeLayout{persistErr: &repository.Error{Code: repository.ErrCodeUpdateFailed, Op: "update icon"}}
	w := New(l, &fakeSnapshots{}, quietLogger())

	require.NoError(t, w.Request(ApplySort{}))
	res := w.Confirm(context.Background())
	assert.Equal(t, StateError, res.State)
	assert.True(t, repository.IsUpdateFailed(res.Err))
}

func TestWorkflow_StaleLoadoutNeedsSecondConfirm(t *testing.T) {
	l := &fakeLayout{stale: true}
	s := &fakeSnapshots{}
	w := New(l, s, quietLogger())
	ctx := context.Background()

	require.NoError(t, w.Request(RestoreLoadout{Name: "evening"}))

	res := w.Confirm(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, StateWarning, res.State)
	assert.Equal(t, "/loadouts/evening.db", l.comparedTo)
	assert.Empty(t, s.calls, "nothing restored yet")
	assert.Equal(t, RestoreLoadout{Name: "evening", Force: true}, w.Pending())
	assert.Contains(t, w.Pending().Prompt(), "outdated")

	res = w.Confirm(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []string{"restore:evening"}, s.calls)
	assert.Equal(t, []string{"compare"}, l.calls, "forced restore skips the comparison")
}

func TestWorkflow_FreshLoadoutRestoresDirectly(t *testing.T) {
	l := &fakeLayout{stale: false}
	s := &fakeSnapshots{}
	w := New(l, s, quietLogger())

	require.NoError(t, w.Request(RestoreLoadout{Name: "evening"}))
	res := w.Confirm(context.Background())
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []string{"restore:evening"}, s.calls)
}

func TestWorkflow_RestoreBackupAndDelete(t *testing.T) {
	s := &fakeSnapshots{}
	w := New(&fakeLayout{}, s, quietLogger())
	ctx := context.Background()

	assert.Equal(t, StateDone, w.Apply(ctx, RestoreBackup{}).State)
	assert.Equal(t, StateDone, w.Apply(ctx, DeleteLoadout{Name: "old"}).State)
	assert.Equal(t, []string{"restore-backup", "delete:old"}, s.calls)
}

func TestWorkflow_Transitions(t *testing.T) {
	w := New(&fakeLayout{}, &fakeSnapshots{}, quietLogger())

	res := w.Confirm(context.Background())
	assert.Error(t, res.Err, "nothing pending")
	assert.Equal(t, StateNone, res.State)

	require.NoError(t, w.Request(RestoreBackup{}))
	assert.Error(t, w.Request(DeleteLoadout{Name: "x"}), "one action at a time")

	w.Cancel()
	assert.Equal(t, StateNone, w.State())
	assert.Nil(t, w.Pending())

	res = w.Apply(context.Background(), nil)
	assert.Equal(t, StateError, res.State)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "warning", StateWarning.String())
	assert.Equal(t, "state(42)", State(42).String())
}

// End to end over real files: sort, then restore a stale loadout.
func TestWorkflow_RealFiles(t *testing.T) {
	ctx := context.Background()
	dbPath, iniPath := testutil.NewAppDB(t)
	paths := config.Paths{DB: dbPath, INI: iniPath, DataDir: filepath.Join(t.TempDir(), "data")}
	fs := fsutil.New(fsutil.Options{MaxRetries: 0})

	repo := repository.New(paths, repository.WithFS(fs), repository.WithLogger(quietLogger()))
	snaps := snapshot.New(paths, fs, quietLogger())
	w := New(repo, snaps, quietLogger())

	_, err := snaps.Backup(ctx, "before")
	require.NoError(t, err)

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, order.Sort(m, order.Options{Mode: order.ModeAsc, Key: compare.KeyTitle}))

	require.NoError(t, w.Request(ApplySort{Icons: m.Icons}))
	res := w.Confirm(ctx)
	require.NoError(t, res.Err)
	assert.True(t, snaps.BackupExists())
	w.Reset()

	// Install a new app so the saved loadout is stale.
	s, err := store.Open(dbPath, store.ReadWrite)
	require.NoError(t, err)
	_, err = s.Exec(ctx, "INSERT INTO tbl_appinfo_icon(pageId, pos, title, type, titleId, icon0Type) VALUES (100, 9, 'NewGame', 0, 'PCSE00099', 0)")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, w.Request(RestoreLoadout{Name: "before"}))
	res = w.Confirm(ctx)
	require.NoError(t, res.Err)
	require.Equal(t, StateWarning, res.State)

	res = w.Confirm(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, StateDone, res.State)

	restored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleLayout().Icons, restored.Icons)
}
