// Package store is the thin SQLite adapter over the shell's layout
// database (app.db).
//
// The adapter opens a single database file in one of three modes and
// exposes exec/query/transaction primitives. It never creates or migrates
// the layout schema on open: app.db belongs to the shell, and this tool
// only rewrites the two tables it sorts.
//
// # Database Configuration
//
//   - One connection: SQLite has one writer, and the table rebuild needs
//     connection-scoped pragmas.
//   - Rollback journal (journal_mode=DELETE), never WAL: the file is copied
//     whole for backups and swaps, so all state must live in the main file.
//   - busy_timeout=5000: wait for locks up to 5 seconds.
//
// The bit-exact DDL of the sorted tables lives in schema.go.
package store
