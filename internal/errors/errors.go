package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig     = "CONFIG"
	ErrValidation = "VALIDATION"
	ErrExec       = "EXEC"
	ErrNotFound   = "NOT_FOUND"
	ErrIO         = "IO"
	ErrLock       = "LOCK"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrIO code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrIO,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var ssvErr *Error
	if errors.As(err, &ssvErr) {
		return ssvErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost structured Error in the chain,
// or an empty string if there is none.
func CodeOf(err error) string {
	var ssvErr *Error
	if errors.As(err, &ssvErr) {
		return ssvErr.Code
	}
	return ""
}

// CommandError describes an external program that ran but exited non-zero.
type CommandError struct {
	Program  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s exited with status %d", e.Program, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Program, e.ExitCode, e.Output)
}

// CommandFailed wraps a CommandError in an ErrExec structured error.
func CommandFailed(program string, exitCode int, output string) *Error {
	return WrapWithCode(&CommandError{Program: program, ExitCode: exitCode, Output: output},
		ErrExec,
		fmt.Sprintf("%s failed with exit status %d", program, exitCode),
		"Check the command output above, or run it by hand to see what went wrong.")
}
