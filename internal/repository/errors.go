package repository

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes repository failures.
type ErrorCode string

const (
	// ErrCodeStoreUnavailable indicates the database could not be opened.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeQueryFailed indicates a read statement did not run to completion.
	ErrCodeQueryFailed ErrorCode = "QUERY_FAILED"

	// ErrCodeUpdateFailed indicates a statement of the rebuild failed. The
	// live file is untouched.
	ErrCodeUpdateFailed ErrorCode = "UPDATE_FAILED"

	// ErrCodeSwapFailed indicates the committed working file could not
	// replace the live file. The working file is kept.
	ErrCodeSwapFailed ErrorCode = "SWAP_FAILED"

	// ErrCodeBackupFailed indicates the live file could not be copied to
	// the working path.
	ErrCodeBackupFailed ErrorCode = "BACKUP_FAILED"
)

// Error is a failed repository operation.
type Error struct {
	Code ErrorCode

	// Op names the step that failed ("load icons", "update icon", ...).
	Op string

	// Path is the database file involved. For SwapFailed it is the kept
	// working file.
	Path string

	// Statement is the SQL that failed, if any.
	Statement string

	// Predicate is the readable row match of a failed icon update.
	Predicate string

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Op)
	if e.Predicate != "" {
		msg += fmt.Sprintf(" (where %s)", e.Predicate)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" [%s]", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func codeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsStoreUnavailable reports whether err is a StoreUnavailable failure.
func IsStoreUnavailable(err error) bool { return codeOf(err) == ErrCodeStoreUnavailable }

// IsQueryFailed reports whether err is a QueryFailed failure.
func IsQueryFailed(err error) bool { return codeOf(err) == ErrCodeQueryFailed }

// IsUpdateFailed reports whether err is an UpdateFailed failure.
func IsUpdateFailed(err error) bool { return codeOf(err) == ErrCodeUpdateFailed }

// IsSwapFailed reports whether err is a SwapFailed failure.
func IsSwapFailed(err error) bool { return codeOf(err) == ErrCodeSwapFailed }

// IsBackupFailed reports whether err is a BackupFailed failure.
func IsBackupFailed(err error) bool { return codeOf(err) == ErrCodeBackupFailed }

// Code returns err's repository error code, or "" if err is not one.
func Code(err error) ErrorCode { return codeOf(err) }
