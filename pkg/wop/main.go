// Package wop dispatches a resolved command line: it materializes scripts,
// runs cargo against them and serves the informational commands.
package wop

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yaklabco/cargo-wop/config"
	"github.com/yaklabco/cargo-wop/internal/ish"
	"github.com/yaklabco/cargo-wop/internal/log"
	"github.com/yaklabco/cargo-wop/pkg/cargo"
	"github.com/yaklabco/cargo-wop/pkg/command"
	"github.com/yaklabco/cargo-wop/pkg/errs"
	"github.com/yaklabco/cargo-wop/pkg/project"
	"github.com/yaklabco/cargo-wop/pkg/wop/prettylog"
)

const manifestMode = 0o644

// RunParams contains the args for invoking a run of wop.
type RunParams struct {
	BaseCtx context.Context // BaseCtx is the base context for the run, often used for cancellation.

	Stdin  io.Reader // reader to read stdin from
	Stdout io.Writer // writer to write stdout messages to
	Stderr io.Writer // writer to write stderr messages to

	WriterForLogger io.Writer // writer the structured logger writes to

	Args    []string       // full command line, starting with the tool name
	WorkDir string         // directory receiving artifacts, manifests and new scripts
	Config  *config.Config // configuration; the global config when nil
	Env     project.Environment

	Verbose bool   // echo commands and log copied artifacts
	Debug   bool   // turn on debug messages
	Version string // printed by --version
}

const devVersion = "dev"

// Run is the entrypoint for running wop.
func Run(params RunParams) error {
	if err := preprocessRunParams(&params); err != nil {
		return err
	}

	prettylog.SetupPrettyLogger(params.WriterForLogger, prettylog.Level(params.Verbose, params.Debug))
	ish.SetVerbose(params.Verbose)

	resolver := command.Resolver{ReleaseFlag: params.Config.ReleaseFlag}
	resolved, err := resolver.Resolve(params.Args)
	if err != nil {
		return err
	}
	if resolved.Target != "" && !filepath.IsAbs(resolved.Target) {
		resolved.Target = filepath.Join(params.WorkDir, resolved.Target)
	}

	r := &runner{
		params:   params,
		resolver: resolver,
		materializer: &project.Materializer{
			Env:       params.Env,
			CacheRoot: params.Config.CacheDir,
		},
		invoker: &cargo.Invoker{
			Cargo:  params.Config.CargoCmd,
			Stdin:  params.Stdin,
			Stdout: params.Stdout,
			Stderr: params.Stderr,
		},
	}
	return r.execute(params.BaseCtx, resolved)
}

func preprocessRunParams(params *RunParams) error {
	params.BaseCtx = cmp.Or(params.BaseCtx, context.Background())

	params.Stdin = cmp.Or(params.Stdin, io.Reader(os.Stdin))
	params.Stdout = cmp.Or(params.Stdout, io.Writer(os.Stdout))
	params.Stderr = cmp.Or(params.Stderr, io.Writer(os.Stderr))
	params.WriterForLogger = cmp.Or(params.WriterForLogger, params.Stderr)

	cfg := params.Config
	if cfg == nil {
		cfg = config.Global()
	}
	local := *cfg
	local.CargoCmd = cmp.Or(local.CargoCmd, config.DefaultCargoCmd)
	local.ReleaseFlag = cmp.Or(local.ReleaseFlag, config.DefaultReleaseFlag)
	params.Config = &local

	params.Verbose = params.Verbose || local.Verbose
	params.Debug = params.Debug || local.Debug
	params.Version = cmp.Or(params.Version, devVersion)

	if params.Env == nil {
		params.Env = project.OSEnvironment{}
	}

	if params.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errs.IOf("can't get current working directory: %w", err)
		}
		params.WorkDir = wd
	}
	return nil
}

type runner struct {
	params       RunParams
	resolver     command.Resolver
	materializer *project.Materializer
	invoker      *cargo.Invoker
}

func (r *runner) execute(ctx context.Context, resolved command.Resolved) error {
	slog.Debug("resolved command",
		slog.String(log.Action, resolved.Action.String()),
		slog.String(log.Kind, resolved.Kind.String()),
		slog.String(log.Cmd, resolved.Command),
		slog.String(log.Target, resolved.Target),
		slog.Any(log.Args, resolved.Args))

	switch resolved.Action {
	case command.ActionDefault:
		return r.defaultAction(ctx, resolved)
	case command.ActionToolchainCall:
		return r.toolchainCall(ctx, resolved)
	case command.ActionShowManifest:
		return r.showManifest(resolved)
	case command.ActionWriteManifest:
		return r.writeManifest(resolved)
	case command.ActionHelp:
		renderMarkdown(r.params.Stdout, HelpText(r.params.Config))
		return nil
	case command.ActionListTemplates:
		ListTemplates(r.params.Stdout)
		return nil
	case command.ActionCreateFromTemplate:
		return r.createFromTemplate(resolved)
	case command.ActionVersion:
		_, _ = fmt.Fprintln(r.params.Stdout, command.ToolName, r.params.Version)
		return nil
	default:
		return fmt.Errorf("%w: unhandled action %s", errs.ErrUsage, resolved.Action)
	}
}

// defaultAction reads the script's [wop] default-action and executes the
// command it names. The synthesized command is resolved exactly once and
// can never be another default action.
func (r *runner) defaultAction(ctx context.Context, resolved command.Resolved) error {
	proj, err := r.materializer.Prepare(resolved.Target)
	if err != nil {
		return err
	}
	next, err := r.resolver.ResolveDefault(resolved.Target, proj.Options.DefaultAction, resolved.Args)
	if err != nil {
		return fmt.Errorf("%s: %w", proj.Source, err)
	}
	if next.Action == command.ActionDefault {
		return command.ErrRecursiveDefaultAction
	}
	return r.execute(ctx, next)
}

func (r *runner) toolchainCall(ctx context.Context, resolved command.Resolved) error {
	proj, err := r.materializer.Materialize(resolved.Target)
	if err != nil {
		return err
	}
	if err := r.invoker.Invoke(ctx, proj, resolved.Command, resolved.Args); err != nil {
		return err
	}
	if resolved.Kind != command.KindBuild {
		return nil
	}

	artifacts, err := r.invoker.CollectArtifacts(ctx, proj, resolved.Command, resolved.Args)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		slog.Warn("build produced no artifacts", slog.String(log.Name, proj.Name))
		return nil
	}
	_, err = cargo.CopyArtifacts(artifacts, proj.Options, r.params.WorkDir)
	return err
}

func (r *runner) showManifest(resolved command.Resolved) error {
	proj, err := r.materializer.Prepare(resolved.Target)
	if err != nil {
		return err
	}
	data, err := proj.ManifestTOML()
	if err != nil {
		return err
	}
	_, err = r.params.Stdout.Write(data)
	return err //nolint:wrapcheck // stdout write
}

// writeManifest writes the normalized manifest into the working directory.
// All paths in it are absolute, so it builds the script in place.
func (r *runner) writeManifest(resolved command.Resolved) error {
	proj, err := r.materializer.Prepare(resolved.Target)
	if err != nil {
		return err
	}
	data, err := proj.ManifestTOML()
	if err != nil {
		return err
	}

	dest := filepath.Join(r.params.WorkDir, project.ManifestFile)
	fd, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, manifestMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return errs.IOf("refusing to overwrite %s: %w", dest, err)
		}
		return errs.IOf("can't create %s: %w", dest, err)
	}
	defer func() { _ = fd.Close() }()

	if _, err := fd.Write(data); err != nil {
		return errs.IOf("can't write %s: %w", dest, err)
	}
	slog.Info("wrote manifest", slog.String(log.Path, dest))
	return nil
}

func (r *runner) createFromTemplate(resolved command.Resolved) error {
	if err := CreateFromTemplate(resolved.Template, resolved.Target); err != nil {
		return err
	}
	slog.Info("created script", slog.String(log.Template, resolved.Template), slog.String(log.Path, resolved.Target))
	return nil
}
