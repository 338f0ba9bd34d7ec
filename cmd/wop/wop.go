package wop

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/yaklabco/cargo-wop/cmd/wop/version"
	"github.com/yaklabco/cargo-wop/config"
	"github.com/yaklabco/cargo-wop/pkg/wop"
)

const (
	shortDescription = "cargo-wop builds and runs single-file Rust scripts that carry their own manifest."

	longDescription = shortDescription + `

cargo invokes this binary as "cargo-wop wop <args>", so it is normally run as
"cargo wop <command-or-script> [args...]". Run "cargo wop help" for the
commands.`
)

type rootCmdOptions struct {
	runFunc func(params wop.RunParams) error
}

type Option func(*rootCmdOptions)

// This is intentionally designed to be unusable from outside this package,
// as it exists purely for testing purposes.
func withRunFunc(fn func(params wop.RunParams) error) Option {
	return func(opts *rootCmdOptions) {
		opts.runFunc = fn
	}
}

// NewRootCmd returns the cargo-wop command. Flag parsing is disabled: the
// whole command line, including help and version flags, is resolved by wop.
func NewRootCmd(ctx context.Context, opts ...Option) *cobra.Command {
	rootCmdOpts := &rootCmdOptions{
		runFunc: wop.Run,
	}
	for _, opt := range opts {
		opt(rootCmdOpts)
	}

	rootCmd := &cobra.Command{
		Use:   "cargo-wop wop <command-or-script> [args...]",
		Short: shortDescription,
		Long:  longDescription,
		Example: `	# Run a script
	cargo wop script.rs

	# Build a script and copy its artifacts here
	cargo wop build script.rs

	# Show the generated manifest
	cargo wop manifest script.rs

	# Start a new library script
	cargo wop new lib mylib.rs`,
		Version:            version.OverallVersionStringColorized(ctx),
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(&config.LoadOptions{Stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err //nolint:wrapcheck // already descriptive
			}

			return rootCmdOpts.runFunc(wop.RunParams{
				BaseCtx:         cmd.Context(),
				Stdin:           cmd.InOrStdin(),
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
				WriterForLogger: os.Stderr,
				Args:            args,
				Config:          cfg,
				Verbose:         cfg.Verbose,
				Debug:           cfg.Debug,
				Version:         version.OverallVersionString(cmd.Context()),
			})
		},
	}

	return rootCmd
}

// ExecuteWithFang runs the root Cobra command with Fang-specific options.
// It accepts a context and a root Cobra command as input parameters.
// Returns an error if the command execution fails.
func ExecuteWithFang(ctx context.Context, rootCmd *cobra.Command) error {
	//nolint:wrapcheck // top-level error from cobra, wrapping not needed
	return fang.Execute(
		ctx, rootCmd, fang.WithVersion(rootCmd.Version), fang.WithoutManpage(), fang.WithoutCompletions())
}
