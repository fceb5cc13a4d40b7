package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/store"
)

// rebuild describes how one table is rewritten.
type rebuild struct {
	table   string
	scratch string

	// update applies the new values to the scratch table.
	update func(ctx context.Context, tx *sql.Tx, log *slog.Logger) error

	// finish replaces the table with the scratch copy. It runs inside the
	// transaction after update succeeds.
	finish []string
}

// Persist writes the (pageId, pos) of every icon back to the live database.
// icons is normally the Icons of a sorted model.
func (r *Repository) Persist(ctx context.Context, icons []layout.Icon) error {
	finish := []string{"DROP TABLE " + store.IconTable, store.IconTableDDL}
	finish = append(finish, store.IconIndexDDL...)
	finish = append(finish,
		"INSERT INTO "+store.IconTable+" SELECT * FROM "+store.IconSortTable,
		"DROP TABLE "+store.IconSortTable,
	)

	return r.rewrite(ctx, rebuild{
		table:   store.IconTable,
		scratch: store.IconSortTable,
		update: func(ctx context.Context, tx *sql.Tx, log *slog.Logger) error {
			return updateIcons(ctx, tx, icons, log)
		},
		finish: finish,
	})
}

// PersistPages writes the pageNo of every page back to the live database.
// The page triggers are recreated after the rows are copied back, so the
// copy itself does not renumber anything.
func (r *Repository) PersistPages(ctx context.Context, pages []layout.Page) error {
	finish := []string{"DROP TABLE " + store.PageTable, store.PageTableDDL}
	finish = append(finish, store.PageIndexDDL...)
	finish = append(finish,
		"INSERT INTO "+store.PageTable+" SELECT * FROM "+store.PageSortTable,
		"DROP TABLE "+store.PageSortTable,
	)
	finish = append(finish, store.PageTriggerDDL...)

	return r.rewrite(ctx, rebuild{
		table:   store.PageTable,
		scratch: store.PageSortTable,
		update: func(ctx context.Context, tx *sql.Tx, log *slog.Logger) error {
			return updatePages(ctx, tx, pages, log)
		},
		finish: finish,
	})
}

func updateIcons(ctx context.Context, tx *sql.Tx, icons []layout.Icon, log *slog.Logger) error {
	for _, ic := range icons {
		pred, err := ic.Match()
		if err != nil {
			return &Error{Code: ErrCodeUpdateFailed, Op: "update icon", Err: err}
		}

		stmt := "UPDATE " + store.IconSortTable + " SET pageId = ?, pos = ? WHERE " + pred.Clause
		args := append([]any{ic.PageID, ic.Pos}, pred.Args...)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return &Error{
				Code:      ErrCodeUpdateFailed,
				Op:        "update icon",
				Statement: stmt,
				Predicate: pred.String(),
				Err:       err,
			}
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			log.Warn("icon update matched no rows", "where", pred.String())
		}
	}
	return nil
}

func updatePages(ctx context.Context, tx *sql.Tx, pages []layout.Page, log *slog.Logger) error {
	stmt := "UPDATE " + store.PageSortTable + " SET pageNo = ? WHERE pageId = ?"
	for _, p := range pages {
		res, err := tx.ExecContext(ctx, stmt, p.PageNo, p.PageID)
		if err != nil {
			return &Error{
				Code:      ErrCodeUpdateFailed,
				Op:        "update page",
				Statement: stmt,
				Predicate: fmt.Sprintf("pageId = %d", p.PageID),
				Err:       err,
			}
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			log.Warn("page update matched no rows", "page_id", p.PageID)
		}
	}
	return nil
}

// rewrite runs the copy, rebuild and swap protocol for one table.
func (r *Repository) rewrite(ctx context.Context, rb rebuild) error {
	log := r.logger.With("run", r.runs.Generate(), "table", rb.table)
	start := time.Now()
	working := r.WorkingPath()

	log.Info("copying live database", "from", r.paths.DB, "to", working)
	if err := r.fs.Copy(ctx, r.paths.DB, working); err != nil {
		return &Error{Code: ErrCodeBackupFailed, Op: "copy live database", Path: r.paths.DB, Err: err}
	}

	if err := r.rebuildWorking(ctx, working, rb, log); err != nil {
		log.Error("rebuild failed, discarding working file", "error", err)
		if rmErr := r.fs.Remove(ctx, working); rmErr != nil {
			log.Warn("failed to remove working file", "path", working, "error", rmErr)
		}
		return err
	}

	if err := r.fs.Rename(ctx, working, r.paths.DB); err != nil {
		log.Error("swap failed, working file kept", "path", working, "error", err)
		return &Error{Code: ErrCodeSwapFailed, Op: "replace live database", Path: working, Err: err}
	}

	log.Info("layout written", "path", r.paths.DB, "duration", time.Since(start))
	return nil
}

// rebuildWorking rewrites rb.table in the working file and commits. The
// power lock is held for the duration and released on every path.
//
// SQLite ignores PRAGMA foreign_keys inside a transaction, so the pragma is
// issued on the pinned connection before BEGIN and after COMMIT.
func (r *Repository) rebuildWorking(ctx context.Context, working string, rb rebuild, log *slog.Logger) error {
	s, err := r.open(working, store.ReadWrite, "open working database")
	if err != nil {
		return err
	}
	defer s.Close()

	r.power.Lock()
	defer r.power.Unlock()

	conn, err := s.Conn(ctx)
	if err != nil {
		return &Error{Code: ErrCodeStoreUnavailable, Op: "pin connection", Path: working, Err: err}
	}
	defer conn.Close()

	if err := execStep(ctx, conn, "PRAGMA foreign_keys = off", working); err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Code: ErrCodeUpdateFailed, Op: "begin transaction", Path: working, Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	prepare := []string{
		"DROP TABLE IF EXISTS " + rb.scratch,
		"CREATE TABLE " + rb.scratch + " AS SELECT * FROM " + rb.table,
	}
	for _, stmt := range prepare {
		if err := execStep(ctx, tx, stmt, working); err != nil {
			return err
		}
	}

	if err := rb.update(ctx, tx, log); err != nil {
		if _, dropErr := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+rb.scratch); dropErr != nil {
			log.Warn("failed to drop scratch table", "table", rb.scratch, "error", dropErr)
		}
		var re *Error
		if errors.As(err, &re) && re.Path == "" {
			re.Path = working
		}
		return err
	}

	for _, stmt := range rb.finish {
		if err := execStep(ctx, tx, stmt, working); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return &Error{Code: ErrCodeUpdateFailed, Op: "commit", Path: working, Err: err}
	}
	committed = true

	if err := execStep(ctx, conn, "PRAGMA foreign_keys = on", working); err != nil {
		return err
	}

	// The store has a single connection; release it before the check.
	conn.Close()
	if err := s.IntegrityCheck(ctx); err != nil {
		return &Error{Code: ErrCodeUpdateFailed, Op: "check working database", Path: working, Err: err}
	}

	log.Debug("working database committed", "path", working)
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execStep(ctx context.Context, db execer, stmt, path string) error {
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return &Error{
			Code:      ErrCodeUpdateFailed,
			Op:        "rebuild: " + firstWords(stmt, 3),
			Path:      path,
			Statement: stmt,
			Err:       err,
		}
	}
	return nil
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
