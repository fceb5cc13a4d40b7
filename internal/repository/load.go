package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/homesort/internal/compare"
	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/store"
)

const iconQuery = `SELECT info_icon.pageId, info_page.pageNo, info_icon.pos, info_icon.title, info_icon.titleId, info_icon.reserved01, info_icon.icon0Type
FROM tbl_appinfo_icon info_icon
INNER JOIN tbl_appinfo_page info_page ON info_icon.pageId = info_page.pageId
ORDER BY info_icon.pageId, info_icon.pos`

const pageQuery = `SELECT DISTINCT info_page.pageId, info_page.pageNo
FROM tbl_appinfo_page info_page
INNER JOIN tbl_appinfo_icon info_icon ON info_page.pageId = info_icon.pageId
ORDER BY info_page.pageId`

const titleQuery = "SELECT title FROM tbl_appinfo_icon"

// Load reads the whole layout model from the live database.
//
// The result is built fresh on every call. Icons come back ordered by
// (pageId, pos), pages and folders by pageId.
func (r *Repository) Load(ctx context.Context) (*layout.Model, error) {
	s, err := r.open(r.paths.DB, store.ReadWrite, "open live database")
	if err != nil {
		return nil, err
	}
	defer s.Close()

	m := &layout.Model{
		Icons:     []layout.Icon{},
		Pages:     []layout.Page{},
		Folders:   []layout.Folder{},
		ChildApps: []layout.ChildIcon{},
	}

	if err := loadIcons(ctx, s, m); err != nil {
		return nil, err
	}
	if err := loadPages(ctx, s, m); err != nil {
		return nil, err
	}

	r.logger.Debug("layout loaded",
		"path", r.paths.DB,
		"icons", len(m.Icons),
		"pages", len(m.Pages),
		"folders", len(m.Folders))
	return m, nil
}

func loadIcons(ctx context.Context, s *store.Store, m *layout.Model) error {
	rows, err := s.Query(ctx, iconQuery)
	if err != nil {
		return queryError("load icons", s.Path(), iconQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ic                       layout.Icon
			title, titleID, reserved sql.NullString
		)
		if err := rows.Scan(&ic.PageID, &ic.PageNo, &ic.Pos, &title, &titleID, &reserved, &ic.IconType); err != nil {
			return queryError("scan icon", s.Path(), iconQuery, err)
		}
		// Kept as read: Match must see the stored value. Only the folder
		// mirror is bounded.
		ic.Title = text(title)
		ic.TitleID = text(titleID)
		ic.Reserved = text(reserved)

		m.Icons = append(m.Icons, ic)
		if ic.InFolder() {
			m.ChildApps = append(m.ChildApps, ic.Child())
		}
	}
	if err := rows.Err(); err != nil {
		return queryError("load icons", s.Path(), iconQuery, err)
	}
	return nil
}

func loadPages(ctx context.Context, s *store.Store, m *layout.Model) error {
	rows, err := s.Query(ctx, pageQuery)
	if err != nil {
		return queryError("load pages", s.Path(), pageQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var pageID, pageNo int
		if err := rows.Scan(&pageID, &pageNo); err != nil {
			return queryError("scan page", s.Path(), pageQuery, err)
		}
		if pageNo >= 0 {
			m.Pages = append(m.Pages, layout.Page{PageID: pageID, PageNo: pageNo})
		} else {
			m.Folders = append(m.Folders, layout.Folder{PageID: pageID})
		}
	}
	if err := rows.Err(); err != nil {
		return queryError("load pages", s.Path(), pageQuery, err)
	}
	return nil
}

// text renders a nullable text column the way the shell's reader does.
func text(ns sql.NullString) string {
	if !ns.Valid {
		return layout.NullText
	}
	return ns.String
}

// Compare reports whether the snapshot database at snapshotDB is stale:
// the live database has at least one title the snapshot lacks. If either
// side has no titles there is nothing to prove and Compare returns false.
func (r *Repository) Compare(ctx context.Context, snapshotDB string) (bool, error) {
	live, err := r.titles(ctx, r.paths.DB)
	if err != nil {
		return false, err
	}
	snap, err := r.titles(ctx, snapshotDB)
	if err != nil {
		return false, err
	}
	if len(live) == 0 || len(snap) == 0 {
		return false, nil
	}

	missing := compare.Difference(live, snap)
	if len(missing) > 0 {
		r.logger.Debug("snapshot is missing titles", "snapshot", snapshotDB, "titles", missing)
	}
	return len(missing) > 0, nil
}

func (r *Repository) titles(ctx context.Context, path string) ([]string, error) {
	s, err := r.open(path, store.ReadOnly, "open database for titles")
	if err != nil {
		return nil, err
	}
	defer s.Close()

	rows, err := s.Query(ctx, titleQuery)
	if err != nil {
		return nil, queryError("load titles", path, titleQuery, err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title sql.NullString
		if err := rows.Scan(&title); err != nil {
			return nil, queryError("scan title", path, titleQuery, err)
		}
		titles = append(titles, text(title))
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("load titles", path, titleQuery, err)
	}
	return titles, nil
}

// Tables lists the tables of the live database.
func (r *Repository) Tables(ctx context.Context) ([]string, error) {
	s, err := r.open(r.paths.DB, store.ReadOnly, "open live database")
	if err != nil {
		return nil, err
	}
	defer s.Close()

	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, &Error{Code: ErrCodeQueryFailed, Op: "list tables", Path: r.paths.DB, Err: err}
	}
	return tables, nil
}

func (r *Repository) open(path string, mode store.Mode, op string) (*store.Store, error) {
	s, err := store.Open(path, mode)
	if err != nil {
		return nil, &Error{Code: ErrCodeStoreUnavailable, Op: op, Path: path, Err: err}
	}
	return s, nil
}

func queryError(op, path, stmt string, err error) *Error {
	return &Error{
		Code:      ErrCodeQueryFailed,
		Op:        op,
		Path:      path,
		Statement: stmt,
		Err:       fmt.Errorf("%s: %w", stmt, err),
	}
}
