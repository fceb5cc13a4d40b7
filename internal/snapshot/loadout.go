package snapshot

import (
	"context"
)

// Backup saves the live database, and the metadata file when there is one,
// as loadout name. An existing loadout of the same name is replaced.
// Returns the normalized name.
func (m *Manager) Backup(ctx context.Context, name string) (string, error) {
	name, err := Normalize(name)
	if err != nil {
		return "", err
	}

	if err := m.FS.MakeDirs(ctx, m.Dir); err != nil {
		return "", &Error{Code: ErrCodeCopyFailed, Op: "create loadout directory", Path: m.Dir, Err: err}
	}

	dbDst := m.DBPath(name)
	iniDst := m.INIPath(name)

	dbTmp, err := m.stage(ctx, m.Live.DB, dbDst)
	if err != nil {
		return "", &Error{Code: ErrCodeCopyFailed, Op: "copy database", Name: name, Path: m.Live.DB, Err: err}
	}

	var iniTmp string
	if m.hasLiveINI() {
		iniTmp, err = m.stage(ctx, m.Live.INI, iniDst)
		if err != nil {
			m.discard(ctx, dbTmp)
			return "", &Error{Code: ErrCodeCopyFailed, Op: "copy layout file", Name: name, Path: m.Live.INI, Err: err}
		}
	}

	if err := m.FS.Rename(ctx, dbTmp, dbDst); err != nil {
		m.discard(ctx, dbTmp)
		m.discard(ctx, iniTmp)
		return "", &Error{Code: ErrCodeCopyFailed, Op: "save database", Name: name, Path: dbDst, Err: err}
	}

	if iniTmp != "" {
		if err := m.FS.Rename(ctx, iniTmp, iniDst); err != nil {
			m.discard(ctx, iniTmp)
			return "", &Error{Code: ErrCodeCopyFailed, Op: "save layout file", Name: name, Path: iniDst, Err: err}
		}
	} else if m.FS.Exists(iniDst) {
		// A stale .ini from an earlier save would not match the new .db.
		if err := m.FS.Remove(ctx, iniDst); err != nil {
			return "", &Error{Code: ErrCodeRemoveFailed, Op: "remove stale layout file", Name: name, Path: iniDst, Err: err}
		}
	}

	m.Logger.Info("loadout saved", "name", name, "path", dbDst, "with_ini", iniTmp != "")
	return name, nil
}

// Restore copies loadout name over the live database, and over the live
// metadata file when the loadout has one.
func (m *Manager) Restore(ctx context.Context, name string) error {
	name, err := Normalize(name)
	if err != nil {
		return err
	}

	dbSrc := m.DBPath(name)
	if !m.FS.Exists(dbSrc) {
		return &Error{Code: ErrCodeNotFound, Op: "restore loadout", Name: name, Path: dbSrc}
	}

	if err := m.place(ctx, dbSrc, m.Live.DB); err != nil {
		return &Error{Code: ErrCodeCopyFailed, Op: "restore database", Name: name, Path: m.Live.DB, Err: err}
	}

	iniSrc := m.INIPath(name)
	if m.Live.INI != "" && m.FS.Exists(iniSrc) {
		if err := m.place(ctx, iniSrc, m.Live.INI); err != nil {
			return &Error{Code: ErrCodeCopyFailed, Op: "restore layout file", Name: name, Path: m.Live.INI, Err: err}
		}
	}

	m.Logger.Info("loadout restored", "name", name)
	return nil
}

// Delete removes loadout name. The .db goes first; if removing the .ini
// then fails the loadout is already gone from the list and only the
// orphaned .ini remains.
func (m *Manager) Delete(ctx context.Context, name string) error {
	name, err := Normalize(name)
	if err != nil {
		return err
	}

	dbPath := m.DBPath(name)
	if !m.FS.Exists(dbPath) {
		return &Error{Code: ErrCodeNotFound, Op: "delete loadout", Name: name, Path: dbPath}
	}
	if err := m.FS.Remove(ctx, dbPath); err != nil {
		return &Error{Code: ErrCodeRemoveFailed, Op: "delete database", Name: name, Path: dbPath, Err: err}
	}

	iniPath := m.INIPath(name)
	if m.FS.Exists(iniPath) {
		if err := m.FS.Remove(ctx, iniPath); err != nil {
			return &Error{Code: ErrCodeRemoveFailed, Op: "delete layout file", Name: name, Path: iniPath, Err: err}
		}
	}

	m.Logger.Info("loadout deleted", "name", name)
	return nil
}

// List returns the saved loadouts ordered case-insensitively by name. A
// missing loadout directory is an empty list.
func (m *Manager) List(ctx context.Context) ([]Loadout, error) {
	if !m.FS.Exists(m.Dir) {
		return []Loadout{}, nil
	}

	entries, err := m.FS.ListDir(ctx, m.Dir, DBExt)
	if err != nil {
		return nil, err
	}

	out := make([]Loadout, 0, len(entries))
	for _, e := range entries {
		name := e.Name[:len(e.Name)-len(DBExt)]
		out = append(out, Loadout{
			Name:     name,
			Size:     e.Size,
			Modified: e.ModTime,
			HasINI:   m.FS.Exists(m.INIPath(name)),
		})
	}
	return out, nil
}

// Path returns the database file of loadout name after normalizing it.
// A loadout that was never saved is NOT_FOUND.
func (m *Manager) Path(name string) (string, error) {
	name, err := Normalize(name)
	if err != nil {
		return "", err
	}
	path := m.DBPath(name)
	if !m.FS.Exists(path) {
		return "", &Error{Code: ErrCodeNotFound, Op: "find loadout", Name: name, Path: path}
	}
	return path, nil
}
