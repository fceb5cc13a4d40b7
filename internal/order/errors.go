package order

import (
	"errors"
	"fmt"
)

// Error is a failure of the ordering pass.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]string
}

// ErrorCode categorizes ordering errors.
type ErrorCode string

const (
	// ErrCodeLayoutOverflow indicates more page icons than the known pages
	// can hold.
	ErrCodeLayoutOverflow ErrorCode = "LAYOUT_OVERFLOW"

	// ErrCodeBadPage indicates a page index outside the page list.
	ErrCodeBadPage ErrorCode = "BAD_PAGE"
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLayoutOverflow reports whether err is a layout overflow.
func IsLayoutOverflow(err error) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeLayoutOverflow
	}
	return false
}

// IsBadPage reports whether err is a page index outside the page list.
func IsBadPage(err error) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeBadPage
	}
	return false
}

func newOverflowError(iconIndex, pages int) *Error {
	return &Error{
		Code:    ErrCodeLayoutOverflow,
		Message: fmt.Sprintf("icon %d needs page %d but only %d page(s) exist", iconIndex, pages+1, pages),
		Details: map[string]string{
			"icon":  fmt.Sprintf("%d", iconIndex),
			"pages": fmt.Sprintf("%d", pages),
		},
	}
}
