package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a fresh database file with the layout schema.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	s, err := Open(path, Create)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for _, stmt := range LayoutSchema() {
		_, err := s.Exec(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}
	return s
}

func TestOpen_CreateMakesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	s, err := Open(path, Create)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
	assert.Equal(t, path, s.Path())
}

func TestOpen_ReadWriteRequiresExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := Open(path, ReadWrite)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "ReadWrite must not create the file")
}

func TestOpen_ReadOnlyRejectsWrites(t *testing.T) {
	s := createTestStore(t)
	path := s.Path()
	require.NoError(t, s.Close())

	ro, err := Open(path, ReadOnly)
	require.NoError(t, err)
	defer ro.Close()

	_, err = ro.Exec(context.Background(), "INSERT INTO tbl_appinfo_page(pageId, pageNo) VALUES (1, 0)")
	assert.Error(t, err)
}

func TestOpen_JournalModeDelete(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "delete"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestTables(t *testing.T) {
	s := createTestStore(t)

	tables, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{IconTable, PageTable}, tables)

	ok, err := s.HasTable(context.Background(), IconSortTable)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntegrityCheck(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.IntegrityCheck(context.Background()))
}

func TestPageTriggers_KeepNumbersContiguous(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []int{1, 2, 3} {
		_, err := s.Exec(ctx, "INSERT INTO tbl_appinfo_page(pageId, pageNo) VALUES (?, ?)", id, id-1)
		require.NoError(t, err)
	}

	_, err := s.Exec(ctx, "DELETE FROM tbl_appinfo_page WHERE pageId = 1")
	require.NoError(t, err)

	rows, err := s.Query(ctx, "SELECT pageNo FROM tbl_appinfo_page ORDER BY pageId")
	require.NoError(t, err)
	defer rows.Close()

	var got []int
	for rows.Next() {
		var n int
		require.NoError(t, rows.Scan(&n))
		got = append(got, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int{0, 1}, got)
}
