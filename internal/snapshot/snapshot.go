// Package snapshot saves and restores whole copies of the layout database.
//
// Loadouts are named copies of the live database, each optionally paired
// with a copy of the layout metadata file, kept under one directory as
// <name>.db and <name>.ini. The undo backup is a separate, unnamed copy
// taken before every layout write.
//
// Every file that lands at a final path is written to a temporary name in
// the same directory first and renamed into place, so a reader never sees
// a partial copy. A loadout's .db and .ini are renamed one after the other;
// only a failure between those two renames can leave a mismatched pair.
package snapshot

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/homesort/internal/config"
	"github.com/roach88/homesort/internal/fsutil"
)

// File extensions of a loadout pair.
const (
	DBExt  = ".db"
	INIExt = ".ini"
)

// Undo backup file names. The first backup ever taken goes to
// PristineBackupName and is never overwritten; later ones go to
// LatestBackupName.
const (
	PristineBackupName = "app.db.bkp"
	LatestBackupName   = "app.db"
)

// LivePaths are the files a loadout captures.
type LivePaths struct {
	DB  string
	INI string // empty: no metadata file
}

// Manager owns the loadout directory and the undo backup.
type Manager struct {
	Dir       string
	BackupDir string
	Live      LivePaths
	FS        fsutil.FS
	Logger    *slog.Logger
}

// New creates a Manager for the configured paths.
func New(paths config.Paths, fs fsutil.FS, logger *slog.Logger) *Manager {
	if fs == nil {
		fs = fsutil.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		Dir:       paths.LoadoutDir(),
		BackupDir: paths.BackupDir(),
		Live:      LivePaths{DB: paths.DB, INI: paths.INI},
		FS:        fs,
		Logger:    logger,
	}
}

// Loadout is one entry of the loadout list.
type Loadout struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	HasINI   bool      `json:"has_ini"`
}

// Normalize trims name and strips everything from its last dot, the way a
// user-typed "favourites.db" becomes "favourites". It rejects empty results
// and names containing path elements.
func Normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)

	if name == "" {
		return "", &Error{Code: ErrCodeEmptyName, Op: "check name"}
	}
	if name == "." || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", &Error{Code: ErrCodeInvalidName, Op: "check name", Name: name}
	}
	return name, nil
}

// DBPath returns the database file of loadout name. name must be
// normalized.
func (m *Manager) DBPath(name string) string {
	return filepath.Join(m.Dir, name+DBExt)
}

// INIPath returns the metadata file of loadout name.
func (m *Manager) INIPath(name string) string {
	return filepath.Join(m.Dir, name+INIExt)
}

func (m *Manager) hasLiveINI() bool {
	return m.Live.INI != "" && m.FS.Exists(m.Live.INI)
}

// tempPath returns a fresh sibling of dst for staging a copy.
func tempPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), "."+uuid.NewString()+".tmp")
}

// stage copies src to a temp sibling of dst. The caller renames or removes
// the returned path.
func (m *Manager) stage(ctx context.Context, src, dst string) (string, error) {
	tmp := tempPath(dst)
	if err := m.FS.Copy(ctx, src, tmp); err != nil {
		m.discard(ctx, tmp)
		return "", err
	}
	return tmp, nil
}

// place copies src over dst through a temp file.
func (m *Manager) place(ctx context.Context, src, dst string) error {
	tmp, err := m.stage(ctx, src, dst)
	if err != nil {
		return err
	}
	if err := m.FS.Rename(ctx, tmp, dst); err != nil {
		m.discard(ctx, tmp)
		return err
	}
	return nil
}

// discard removes a leftover temp file, logging instead of failing.
func (m *Manager) discard(ctx context.Context, path string) {
	if !m.FS.Exists(path) {
		return
	}
	if err := m.FS.Remove(ctx, path); err != nil {
		m.Logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}
