package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/homesort/internal/order"
	"github.com/roach88/homesort/internal/repository"
	"github.com/roach88/homesort/internal/snapshot"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The operation ran and failed (write rejected, layout overflow)
	ExitCommandError = 2 // Bad invocation or environment (config, missing database, bad name)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeConfig         = "E002" // Config file invalid or unwritable
	ErrCodeUnavailable    = "E003" // Database could not be opened
	ErrCodeReadFailed     = "E004" // Layout could not be read
	ErrCodeNotFound       = "E005" // Loadout, backup or page not found
	ErrCodeNotApplied     = "E006" // Write failed; live database unchanged
	ErrCodeInvalidName    = "E007" // Empty or unusable loadout name
	ErrCodeLayoutOverflow = "E008" // Icons do not fit on the existing pages
)

// NotAppliedMessage is shown for every failed write.
const NotAppliedMessage = "changes not applied, your data is safe; please try again"

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Render outputs data as JSON, or calls text to write the human form.
func (f *OutputFormatter) Render(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	return text(f.Writer)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, message, exit := classify(err)
	_ = f.Error(code, message, err.Error())
	return WrapExitError(exit, fmt.Sprintf("%s: %s", code, message), err)
}

// classify maps a domain error to an output code, a user-facing message
// and an exit code. Every failed write gets the same reassurance, because
// the live database is unchanged in all of them.
func classify(err error) (code, message string, exit int) {
	var cfgErr *configError
	switch {
	case errors.As(err, &cfgErr):
		return ErrCodeConfig, "invalid configuration", ExitCommandError

	case repository.IsStoreUnavailable(err):
		return ErrCodeUnavailable, "cannot open the layout database", ExitCommandError

	case repository.IsQueryFailed(err):
		return ErrCodeReadFailed, "cannot read the layout database", ExitFailure

	case repository.IsSwapFailed(err):
		var re *repository.Error
		errors.As(err, &re)
		return ErrCodeNotApplied, fmt.Sprintf("%s (the rewritten database was kept at %s)", NotAppliedMessage, re.Path), ExitFailure

	case repository.IsUpdateFailed(err), repository.IsBackupFailed(err),
		snapshot.IsCopyFailed(err), snapshot.IsRemoveFailed(err):
		return ErrCodeNotApplied, NotAppliedMessage, ExitFailure

	case snapshot.IsNotFound(err), errors.Is(err, errPageNotFound),
		errors.Is(err, errBackupNotFound), order.IsBadPage(err):
		return ErrCodeNotFound, err.Error(), ExitCommandError

	case snapshot.IsEmptyName(err), snapshot.IsInvalidName(err):
		return ErrCodeInvalidName, "a loadout needs a plain, non-empty name", ExitCommandError

	case order.IsLayoutOverflow(err):
		return ErrCodeLayoutOverflow, "the sorted icons do not fit on the existing pages", ExitFailure
	}
	return ErrCodeGeneric, err.Error(), ExitFailure
}
