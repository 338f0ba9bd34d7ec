// Package errs defines the error kinds reported by wop and the mapping from
// errors to process exit codes.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by wop wraps exactly one of these.
var (
	// ErrUsage marks malformed or insufficient command line arguments.
	ErrUsage = errors.New("usage error")

	// ErrDescriptor marks a malformed embedded manifest.
	ErrDescriptor = errors.New("invalid embedded manifest")

	// ErrNormalization marks a manifest that cannot be completed into a
	// standalone Cargo.toml.
	ErrNormalization = errors.New("cannot normalize manifest")

	// ErrIO marks filesystem failures.
	ErrIO = errors.New("i/o error")

	// ErrProcess marks a failed or misbehaving cargo invocation.
	ErrProcess = errors.New("cargo invocation failed")
)

// Exit codes for failures that do not come from cargo itself.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ExitStatuser is an interface for errors that carry an exit status code.
type ExitStatuser interface {
	ExitStatus() int
}

// ProcessError reports a cargo invocation that exited with a non-zero code.
// The code is propagated unchanged as wop's own exit code.
type ProcessError struct {
	Code   int
	Cmd    string
	Args   []string
	Stderr string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf(`running "%s %s" failed with exit code %d`, e.Cmd, strings.Join(e.Args, " "), e.Code)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

// ExitStatus implements ExitStatuser.
func (e *ProcessError) ExitStatus() int {
	return e.Code
}

// Unwrap makes errors.Is(err, ErrProcess) hold for process errors.
func (e *ProcessError) Unwrap() error {
	return ErrProcess
}

// Usagef returns an ErrUsage-wrapping error with the given message.
func Usagef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// IOf returns an ErrIO-wrapping error. The last argument should be the
// underlying error, formatted with %w.
func IOf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %w", ErrIO, fmt.Errorf(format, args...))
}

// ExitStatus queries the error for an exit status. If the error is nil, it
// returns 0. Errors implementing ExitStatuser report their own code, usage
// errors report ExitUsage, and anything else reports ExitError.
func ExitStatus(err error) int {
	if err == nil {
		return ExitOK
	}
	var exit ExitStatuser
	if errors.As(err, &exit) {
		return exit.ExitStatus()
	}
	if errors.Is(err, ErrUsage) {
		return ExitUsage
	}
	return ExitError
}
