// Package cargo runs cargo against a materialized project and collects the
// artifacts a build produced.
package cargo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yaklabco/cargo-wop/internal/ish"
	"github.com/yaklabco/cargo-wop/internal/log"
	"github.com/yaklabco/cargo-wop/pkg/errs"
	"github.com/yaklabco/cargo-wop/pkg/project"
)

const (
	// DefaultCommand is the cargo executable used when none is configured.
	DefaultCommand = "cargo"

	manifestPathFlag = "--manifest-path"
	pathFlag         = "--path"
	installCommand   = "install"
)

// MessageFormatJSON asks cargo for its machine readable event stream.
var MessageFormatJSON = []string{"--message-format", "json"} //nolint:gochecknoglobals // constant

// Invoker runs cargo subcommands.
type Invoker struct {
	// Cargo is the cargo executable.
	Cargo string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewInvoker returns an Invoker attached to the process's stdio.
func NewInvoker(cargo string) *Invoker {
	if cargo == "" {
		cargo = DefaultCommand
	}
	return &Invoker{Cargo: cargo, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Args builds the cargo argument list for running command on proj.
// install is pointed at the project directory, everything else at the
// manifest.
func Args(proj *project.Project, command string, args []string) []string {
	out := make([]string, 0, len(args)+3) //nolint:mnd // command, flag, value
	if command == installCommand {
		out = append(out, command, pathFlag, proj.Dir)
	} else {
		out = append(out, command, manifestPathFlag, proj.ManifestPath)
	}
	return append(out, args...)
}

// Invoke runs cargo with inherited stdio. A non-zero exit is returned as an
// *errs.ProcessError carrying cargo's exit code.
func (inv *Invoker) Invoke(ctx context.Context, proj *project.Project, command string, args []string) error {
	cargoArgs := Args(proj, command, args)
	slog.Debug("invoking cargo", slog.String(log.Cmd, inv.Cargo), slog.Any(log.Args, cargoArgs))
	_, err := ish.Exec(ctx, inv.Stdin, inv.Stdout, inv.Stderr, inv.Cargo, cargoArgs...)
	return err
}

// CollectArtifacts re-runs a build with JSON output and returns the files
// produced for proj's own package. Cargo's stderr is forwarded and also
// attached to the error if the build fails.
func (inv *Invoker) CollectArtifacts(ctx context.Context, proj *project.Project, command string, args []string) ([]string, error) {
	cargoArgs := make([]string, 0, len(args)+len(MessageFormatJSON)+3) //nolint:mnd // command, flag, value
	cargoArgs = append(cargoArgs, command, manifestPathFlag, proj.ManifestPath)
	cargoArgs = append(cargoArgs, MessageFormatJSON...)
	cargoArgs = append(cargoArgs, args...)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	var errOut io.Writer = stderr
	if inv.Stderr != nil {
		errOut = io.MultiWriter(inv.Stderr, stderr)
	}

	slog.Debug("collecting artifacts", slog.String(log.Cmd, inv.Cargo), slog.Any(log.Args, cargoArgs))
	if _, err := ish.Exec(ctx, nil, stdout, errOut, inv.Cargo, cargoArgs...); err != nil {
		var procErr *errs.ProcessError
		if errors.As(err, &procErr) {
			procErr.Stderr = stderr.String()
		}
		return nil, err
	}
	return ParseBuildOutput(stdout, proj.Name)
}

// CopyArtifacts copies each artifact into destDir under the name chosen by
// the project's filter and returns the written paths. Artifacts the filter
// maps to an empty name are skipped.
func CopyArtifacts(artifacts []string, opts Filter, destDir string) ([]string, error) {
	written := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		name, keep := opts.Destination(filepath.Base(artifact))
		if !keep {
			slog.Debug("skipping artifact", slog.String(log.Filename, artifact))
			continue
		}
		dest := filepath.Join(destDir, name)
		if err := ish.Copy(dest, artifact); err != nil {
			return written, err
		}
		slog.Info("copied artifact", slog.String(log.Filename, artifact), slog.String(log.Dest, dest))
		written = append(written, dest)
	}
	return written, nil
}

// Filter maps artifact file names to destination names.
type Filter interface {
	Destination(name string) (string, bool)
}
