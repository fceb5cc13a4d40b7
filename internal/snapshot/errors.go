package snapshot

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes snapshot failures.
type ErrorCode string

const (
	// ErrCodeCopyFailed indicates a file copy or rename failed.
	ErrCodeCopyFailed ErrorCode = "COPY_FAILED"

	// ErrCodeRemoveFailed indicates a snapshot file could not be deleted.
	ErrCodeRemoveFailed ErrorCode = "REMOVE_FAILED"

	// ErrCodeEmptyName indicates a blank or cancelled loadout name.
	ErrCodeEmptyName ErrorCode = "EMPTY_NAME"

	// ErrCodeInvalidName indicates a name that would escape the loadout
	// directory.
	ErrCodeInvalidName ErrorCode = "INVALID_NAME"

	// ErrCodeNotFound indicates the named loadout or backup does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is a failed snapshot operation.
type Error struct {
	Code ErrorCode
	Op   string
	Name string // loadout name, if any
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Op)
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsCopyFailed reports whether err is a CopyFailed failure.
func IsCopyFailed(err error) bool { return hasCode(err, ErrCodeCopyFailed) }

// IsRemoveFailed reports whether err is a RemoveFailed failure.
func IsRemoveFailed(err error) bool { return hasCode(err, ErrCodeRemoveFailed) }

// IsEmptyName reports whether err rejects a blank name.
func IsEmptyName(err error) bool { return hasCode(err, ErrCodeEmptyName) }

// IsInvalidName reports whether err rejects a name with path elements.
func IsInvalidName(err error) bool { return hasCode(err, ErrCodeInvalidName) }

// IsNotFound reports whether err is a missing loadout or backup.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }
