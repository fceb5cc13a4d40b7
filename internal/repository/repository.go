// Package repository reads the layout model out of the live database and
// writes reordered icons and pages back.
//
// Writes never touch the live file until they are complete. Each one copies
// the live file to a working file, rebuilds the table inside a transaction
// on the working file, checks the result and only then moves the working
// file over the live path. A failure before that last step deletes the
// working file and leaves the live file as it was. A failure during the
// move keeps the committed working file on disk.
package repository

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/homesort/internal/config"
	"github.com/roach88/homesort/internal/fsutil"
	"github.com/roach88/homesort/internal/power"
)

// WorkingSuffix is appended to the live path to name the working file.
const WorkingSuffix = ".sort.bkp"

// RunIDGenerator produces the id attached to every log line of a write.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable run ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 string. Panics if generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Repository is the layout database at one live path.
type Repository struct {
	paths  config.Paths
	fs     fsutil.FS
	power  power.Locker
	logger *slog.Logger
	runs   RunIDGenerator
}

// Option configures a Repository.
type Option func(*Repository)

// WithFS sets the file collaborator. Default: fsutil.Default().
func WithFS(fs fsutil.FS) Option {
	return func(r *Repository) { r.fs = fs }
}

// WithPower sets the suspend lock held during rebuilds. Default: no-op.
func WithPower(l power.Locker) Option {
	return func(r *Repository) { r.power = l }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithRunIDs sets the run id generator. Default: UUIDv7Generator.
func WithRunIDs(g RunIDGenerator) Option {
	return func(r *Repository) { r.runs = g }
}

// New creates a repository over the live database named by paths.DB.
func New(paths config.Paths, opts ...Option) *Repository {
	r := &Repository{
		paths:  paths,
		fs:     fsutil.Default(),
		power:  power.Nop{},
		logger: slog.Default(),
		runs:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the live database path.
func (r *Repository) Path() string {
	return r.paths.DB
}

// WorkingPath returns the path of the working file used by writes.
func (r *Repository) WorkingPath() string {
	return r.paths.DB + WorkingSuffix
}
