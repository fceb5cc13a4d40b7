package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Mode selects how the database file is opened.
type Mode int

const (
	// ReadOnly opens an existing file without write access.
	ReadOnly Mode = iota
	// ReadWrite opens an existing file; a missing file is an error.
	ReadWrite
	// Create opens read-write and creates the file if needed.
	Create
)

func (m Mode) uriMode() string {
	switch m {
	case ReadOnly:
		return "ro"
	case Create:
		return "rwc"
	default:
		return "rw"
	}
}

// Store is an open layout database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the SQLite database at path in the given mode.
//
// The connection is verified before returning, so a missing file opened
// ReadOnly or ReadWrite fails here rather than on first query.
func Open(path string, mode Mode) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	dsn := (&url.URL{
		Scheme:   "file",
		Path:     abs,
		RawQuery: "mode=" + mode.uriMode(),
	}).String()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, mode); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exec executes a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query expected to return at most one row.
func (s *Store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// Conn pins the store's single connection. Pragmas that SQLite ignores
// inside a transaction (foreign_keys) must be issued on the same
// connection as the transaction they bracket.
func (s *Store) Conn(ctx context.Context) (*sql.Conn, error) {
	return s.db.Conn(ctx)
}

// Tables returns the names of all tables in the database, sorted.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tbl_name FROM sqlite_master WHERE type = 'table' ORDER BY tbl_name")
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// HasTable reports whether a table with the given name exists.
func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// ErrCorrupt is returned by IntegrityCheck when SQLite reports problems.
var ErrCorrupt = errors.New("database failed integrity check")

// IntegrityCheck runs PRAGMA integrity_check and fails unless it reports ok.
func (s *Store) IntegrityCheck(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: %s", ErrCorrupt, result)
	}
	return nil
}

// applyPragmas sets connection configuration. A read-only connection cannot
// change the journal mode, so only the busy timeout is applied there.
func applyPragmas(db *sql.DB, mode Mode) error {
	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if mode != ReadOnly {
		pragmas = append(pragmas, "PRAGMA journal_mode = DELETE")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
