package errors

import "github.com/cockroachdb/errors"

// Exit codes used by the CLI. A clean run exits 0, blocking violations
// exit 1, and configuration or usage faults exit 2.
const (
	ExitOK         = 0
	ExitViolations = 1
	ExitUsage      = 2
)

// exitCoder wraps an error and specifies an exit code.
type exitCoder struct {
	cause error
	code  int
}

func (e *exitCoder) Error() string {
	return e.cause.Error()
}

func (e *exitCoder) Cause() error {
	return e.cause
}

func (e *exitCoder) Unwrap() error {
	return e.cause
}

// ExitCode returns the exit code.
func (e *exitCoder) ExitCode() int {
	return e.code
}

// WithExitCode attaches an exit code to an error.
// The exit code can be retrieved later using GetExitCode.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &exitCoder{
		cause: err,
		code:  code,
	}
}

// GetExitCode extracts the exit code from an error chain.
// Returns 0 if err is nil, the attached code if one was set via
// WithExitCode, and 1 otherwise.
func GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var coder *exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return ExitViolations
}
