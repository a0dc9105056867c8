// Package errors provides the machine-readable error codes used by the game
// engine. Only contract violations are errors; blocked moves and game over
// are ordinary outcomes.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"
	// CodeInvalidArgument marks a caller that broke an engine contract.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// Error is a coded engine error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidArgument builds a CodeInvalidArgument error.
func InvalidArgument(format string, args ...any) error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// GetCode extracts the error code from any error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsInvalidArgument reports whether err carries CodeInvalidArgument.
func IsInvalidArgument(err error) bool {
	return err != nil && GetCode(err) == CodeInvalidArgument
}
