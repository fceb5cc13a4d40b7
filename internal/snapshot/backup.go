package snapshot

import (
	"context"
	"path/filepath"
)

// BackupPath returns the undo backup that WholeDbRestore would use, or ""
// if there is none.
func (m *Manager) BackupPath() string {
	latest := filepath.Join(m.BackupDir, LatestBackupName)
	if m.FS.Exists(latest) {
		return latest
	}
	pristine := filepath.Join(m.BackupDir, PristineBackupName)
	if m.FS.Exists(pristine) {
		return pristine
	}
	return ""
}

// BackupExists reports whether an undo backup is available.
func (m *Manager) BackupExists() bool {
	return m.BackupPath() != ""
}

// WholeDbBackup copies the live database to the undo backup. The very
// first backup is kept as the pristine copy; every later one replaces the
// latest copy.
func (m *Manager) WholeDbBackup(ctx context.Context) (string, error) {
	if err := m.FS.MakeDirs(ctx, m.BackupDir); err != nil {
		return "", &Error{Code: ErrCodeCopyFailed, Op: "create backup directory", Path: m.BackupDir, Err: err}
	}

	dst := filepath.Join(m.BackupDir, PristineBackupName)
	if m.FS.Exists(dst) {
		dst = filepath.Join(m.BackupDir, LatestBackupName)
	}

	if err := m.place(ctx, m.Live.DB, dst); err != nil {
		return "", &Error{Code: ErrCodeCopyFailed, Op: "back up database", Path: dst, Err: err}
	}

	m.Logger.Info("database backed up", "path", dst)
	return dst, nil
}

// WholeDbRestore copies the undo backup over the live database, preferring
// the latest copy over the pristine one.
func (m *Manager) WholeDbRestore(ctx context.Context) (string, error) {
	src := m.BackupPath()
	if src == "" {
		return "", &Error{Code: ErrCodeNotFound, Op: "restore backup", Path: m.BackupDir}
	}

	if err := m.place(ctx, src, m.Live.DB); err != nil {
		return "", &Error{Code: ErrCodeCopyFailed, Op: "restore backup", Path: src, Err: err}
	}

	m.Logger.Info("database restored", "from", src)
	return src, nil
}
