// Package errs defines the coded error type shared by all layers.
//
// Codes separate caller faults (invalid_argument) from remote faults
// (remote_error) and configuration problems (config_missing), so the
// tool dispatch boundary can report each category uniformly.
package errs

import "fmt"

const (
	CodeInvalidArgument = "invalid_argument"
	CodeRemote          = "remote_error"
	CodeConfigMissing   = "config_missing"
)

type AppError struct {
	Code    string
	Message string
	Details any
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code, message string, details any) error {
	return AppError{Code: code, Message: message, Details: details}
}

// InvalidArgument reports a caller fault naming the offending field.
func InvalidArgument(format string, args ...any) error {
	return AppError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Remote wraps an upstream API failure.
func Remote(message string, details any) error {
	return AppError{Code: CodeRemote, Message: message, Details: details}
}

// IsInvalidArgument reports whether err is a caller-fault error.
func IsInvalidArgument(err error) bool {
	appErr, ok := err.(AppError)
	return ok && appErr.Code == CodeInvalidArgument
}
