package ish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"

	"github.com/yaklabco/cargo-wop/internal/log"
	"github.com/yaklabco/cargo-wop/pkg/errs"
)

//nolint:gochecknoglobals // set once from configuration at startup
var verbose atomic.Bool

// SetVerbose toggles echoing of executed commands to the console.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// Verbose reports whether executed commands are echoed.
func Verbose() bool {
	return verbose.Load()
}

// Exec executes the command, piping its stdout and stderr to the given
// writers. A command that ran and exited non-zero is reported as an
// *errs.ProcessError carrying the exit code.
func Exec(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) (bool, error) {
	ran, code, err := run(ctx, stdin, stdout, stderr, cmd, args...)
	if err == nil {
		return true, nil
	}
	if ran {
		return ran, &errs.ProcessError{Code: code, Cmd: cmd, Args: args}
	}
	return ran, fmt.Errorf(`%w: failed to run "%s %s": %w`, errs.ErrProcess, cmd, strings.Join(args, " "), err)
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) (bool, int, error) {
	theCmd := exec.CommandContext(ctx, cmd, args...)
	theCmd.Env = os.Environ()
	theCmd.Stderr = stderr
	theCmd.Stdout = stdout
	theCmd.Stdin = stdin

	quoted := make([]string, 0, len(args))
	for i := range args {
		quoted = append(quoted, fmt.Sprintf("%q", args[i]))
	}
	if Verbose() {
		log.SimpleConsoleLogger.Println("exec:", cmd, strings.Join(quoted, " "))
	}
	err := theCmd.Run()

	return CmdRan(err), ExitStatus(err), err
}

// CmdRan examines the error to determine if it was generated as a result of a
// command running via os/exec.Command.
func CmdRan(err error) bool {
	if err == nil {
		return true
	}
	var ee *exec.ExitError
	ok := errors.As(err, &ee)
	if ok {
		return ee.Exited()
	}
	return false
}

// ExitStatus returns the exit status of the error if it is an exec.ExitError
// or if it implements ExitStatus() int.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exit errs.ExitStatuser
	if errors.As(err, &exit) {
		return exit.ExitStatus()
	}
	var e *exec.ExitError
	if errors.As(err, &e) {
		if ex, ok := e.Sys().(errs.ExitStatuser); ok {
			return ex.ExitStatus()
		}
	}
	return 1
}

// Copy robustly copies the source file to the destination, keeping the
// source's permission bits. An existing destination is truncated.
func Copy(dst string, src string) error {
	from, err := os.Open(src)
	if err != nil {
		return errs.IOf(`can't copy %s: %w`, src, err)
	}
	defer func() { _ = from.Close() }()
	finfo, err := from.Stat()
	if err != nil {
		return errs.IOf(`can't stat %s: %w`, src, err)
	}
	to, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, finfo.Mode())
	if err != nil {
		return errs.IOf(`can't copy to %s: %w`, dst, err)
	}
	defer func() { _ = to.Close() }()
	_, err = io.Copy(to, from)
	if err != nil {
		return errs.IOf(`error copying %s to %s: %w`, src, dst, err)
	}
	return nil
}
