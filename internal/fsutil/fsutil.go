// Package fsutil is the file and directory layer under backups, snapshots
// and the post-commit file swap.
//
// The default implementation delegates to the os package and retries
// transient failures with a short Fibonacci backoff. Permanent conditions
// (missing file, permissions, full disk) fail immediately.
package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	retry "github.com/sethvargo/go-retry"

	"github.com/roach88/homesort/internal/compare"
)

// FS defines the filesystem operations used by the repository and the
// snapshot manager.
type FS interface {
	Exists(path string) bool
	Copy(ctx context.Context, src, dst string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	Remove(ctx context.Context, path string) error
	MakeDirs(ctx context.Context, path string) error
	// ListDir returns the entries of dir, directories first, each group
	// ordered case-insensitively. A non-empty ext keeps only regular files
	// with that extension (compared case-insensitively).
	ListDir(ctx context.Context, dir, ext string) ([]Entry, error)
}

// Entry is one directory listing row.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Options tunes the retry policy of the default FS.
type Options struct {
	MaxRetries uint64
	Base       time.Duration
}

// DefaultOptions retries three times starting at 50ms.
var DefaultOptions = Options{MaxRetries: 3, Base: 50 * time.Millisecond}

type osFS struct {
	opts Options
}

// New returns an FS backed by the os package.
func New(opts Options) FS {
	if opts.Base <= 0 {
		opts.Base = DefaultOptions.Base
	}
	return &osFS{opts: opts}
}

// Default returns an FS with DefaultOptions.
func Default() FS {
	return New(DefaultOptions)
}

func (f *osFS) do(ctx context.Context, task func() error) error {
	b := retry.WithMaxRetries(f.opts.MaxRetries, retry.NewFibonacci(f.opts.Base))
	return retry.Do(ctx, b, func(context.Context) error {
		err := task()
		if ShouldRetry(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (f *osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Copy replaces dst with the bytes of src. The copy is synced before it
// returns so a crash right after a successful copy cannot lose it.
func (f *osFS) Copy(ctx context.Context, src, dst string) error {
	err := f.do(ctx, func() error {
		return copyFile(src, dst)
	})
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &os.PathError{Op: "copy", Path: src, Err: syscall.EISDIR}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func (f *osFS) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := f.do(ctx, func() error { return os.Rename(oldPath, newPath) }); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

func (f *osFS) Remove(ctx context.Context, path string) error {
	if err := f.do(ctx, func() error { return os.Remove(path) }); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (f *osFS) MakeDirs(ctx context.Context, path string) error {
	if err := f.do(ctx, func() error { return os.MkdirAll(path, 0o755) }); err != nil {
		return fmt.Errorf("make dirs %s: %w", path, err)
	}
	return nil
}

func (f *osFS) ListDir(ctx context.Context, dir, ext string) ([]Entry, error) {
	var des []os.DirEntry
	err := f.do(ctx, func() error {
		var err error
		des, err = os.ReadDir(dir)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if ext != "" && (de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ext)) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			IsDir:   de.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	col := compare.NewCollator()
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return col.Compare(a.Name, b.Name)
	})
	return entries, nil
}

// ShouldRetry reports whether err is worth retrying: non-nil and not one of
// the permanent filesystem conditions.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, os.ErrExist) ||
		errors.Is(err, os.ErrClosed) {
		return false
	}
	switch {
	case errors.Is(err, syscall.EROFS),
		errors.Is(err, syscall.ENOSPC),
		errors.Is(err, syscall.EACCES),
		errors.Is(err, syscall.EPERM),
		errors.Is(err, syscall.ENAMETOOLONG),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.EISDIR),
		errors.Is(err, syscall.ENOTEMPTY):
		return false
	}
	return true
}
