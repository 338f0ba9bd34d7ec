// Package command turns the raw wop command line into a single resolved
// action with normalized cargo arguments.
package command

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/yaklabco/cargo-wop/pkg/errs"
)

// ToolName is the invocation name wop expects as its first argument.
const ToolName = "wop"

const (
	// DefaultReleaseFlag is appended for run and build unless the -debug
	// form of the command is used.
	DefaultReleaseFlag = "--release"

	// Separator splits cargo arguments from script arguments for run.
	Separator = "--"

	debugSuffix = "-debug"
)

// ErrRecursiveDefaultAction is returned when a default action resolves to
// another default action.
var ErrRecursiveDefaultAction = fmt.Errorf("%w: default action must name a command", errs.ErrUsage)

// Action identifies what wop does with a resolved command line.
type Action int

//go:generate go tool golang.org/x/tools/cmd/stringer -type=Action,Kind
const (
	ActionDefault Action = iota
	ActionToolchainCall
	ActionShowManifest
	ActionWriteManifest
	ActionHelp
	ActionListTemplates
	ActionCreateFromTemplate
	ActionVersion
)

// Kind classifies toolchain calls by their post-processing.
type Kind int

const (
	KindGeneric Kind = iota // run cargo and report its exit code
	KindBuild               // additionally collect and copy artifacts
	KindInstall             // run cargo install on the project directory
)

// Resolved is the result of resolving a command line.
type Resolved struct {
	Action Action
	Kind   Kind // only meaningful for ActionToolchainCall

	// Command is the cargo subcommand for toolchain calls.
	Command string
	// Target is the script path as given on the command line.
	Target string
	// Args are the normalized cargo arguments for toolchain calls and the
	// residual arguments for default actions.
	Args []string
	// Template names the template for ActionCreateFromTemplate.
	Template string
}

type keyword struct {
	action  Action
	kind    Kind
	command string
	release bool // append the release flag
	split   bool // honour the separator
}

//nolint:gochecknoglobals // lookup table
var passThrough = []string{
	"bench",
	"check",
	"clean",
	"clippy",
	"doc",
	"fmt",
	"metadata",
	"test",
	"tree",
	"update",
	"verify-project",
}

//nolint:gochecknoglobals // lookup table
var keywords = func() map[string]keyword {
	table := map[string]keyword{
		"run":                 {action: ActionToolchainCall, kind: KindGeneric, command: "run", release: true, split: true},
		"run" + debugSuffix:   {action: ActionToolchainCall, kind: KindGeneric, command: "run", split: true},
		"build":               {action: ActionToolchainCall, kind: KindBuild, command: "build", release: true},
		"build" + debugSuffix: {action: ActionToolchainCall, kind: KindBuild, command: "build"},
		"install":             {action: ActionToolchainCall, kind: KindInstall, command: "install"},
		"manifest":            {action: ActionShowManifest},
		"write-manifest":      {action: ActionWriteManifest},
		"help":                {action: ActionHelp},
		"-h":                  {action: ActionHelp},
		"--help":              {action: ActionHelp},
		"new":                 {action: ActionListTemplates},
		"--version":           {action: ActionVersion},
		"-V":                  {action: ActionVersion},
	}
	for _, name := range passThrough {
		table[name] = keyword{action: ActionToolchainCall, kind: KindGeneric, command: name}
	}
	return table
}()

// Keywords returns the sorted list of command keywords.
func Keywords() []string {
	return lo.Filter(slices.Sorted(maps.Keys(keywords)), func(k string, _ int) bool {
		return !strings.HasPrefix(k, "-")
	})
}

// Resolver resolves command lines. The zero value uses DefaultReleaseFlag.
type Resolver struct {
	ReleaseFlag string
}

// Resolve resolves args with the zero Resolver.
func Resolve(args []string) (Resolved, error) {
	return Resolver{}.Resolve(args)
}

// Resolve classifies args into one action. cargo runs external subcommands
// as `cargo-wop wop <args>`, so args must start with ToolName.
func (r Resolver) Resolve(args []string) (Resolved, error) {
	if len(args) < 2 { //nolint:mnd // tool name and command
		return Resolved{}, errs.Usagef("not enough arguments %q, run `%s help` for usage", args, ToolName)
	}
	if args[0] != ToolName {
		return Resolved{}, errs.Usagef("unexpected invocation name %q, expected %q", args[0], ToolName)
	}

	first, rest := args[1], args[2:]
	if isScript(first) {
		return Resolved{Action: ActionDefault, Target: first, Args: slices.Clone(rest)}, nil
	}

	kw, ok := keywords[first]
	if !ok {
		return Resolved{}, errs.Usagef("unknown command %q", first)
	}

	switch kw.action {
	case ActionToolchainCall:
		if len(rest) == 0 {
			return Resolved{}, errs.Usagef("%s: missing script", first)
		}
		return Resolved{
			Action:  ActionToolchainCall,
			Kind:    kw.kind,
			Command: kw.command,
			Target:  rest[0],
			Args:    r.normalizeArgs(kw, rest[1:]),
		}, nil

	case ActionShowManifest, ActionWriteManifest:
		switch len(rest) {
		case 0:
			return Resolved{}, errs.Usagef("%s: missing script", first)
		case 1:
			return Resolved{Action: kw.action, Target: rest[0]}, nil
		default:
			return Resolved{}, errs.Usagef("%s: unexpected arguments %q", first, rest[1:])
		}

	case ActionHelp, ActionVersion:
		if len(rest) != 0 {
			return Resolved{}, errs.Usagef("%s: unexpected arguments %q", first, rest)
		}
		return Resolved{Action: kw.action}, nil

	case ActionListTemplates:
		switch len(rest) {
		case 0:
			return Resolved{Action: ActionListTemplates}, nil
		case 2: //nolint:mnd // template and target
			return Resolved{Action: ActionCreateFromTemplate, Template: rest[0], Target: rest[1]}, nil
		default:
			return Resolved{}, errs.Usagef("%s: expected no arguments or <template> <script>, got %q", first, rest)
		}

	default:
		return Resolved{}, fmt.Errorf("unhandled keyword %q", first)
	}
}

// ResolveDefault resolves the command line synthesized from a script's
// default action. It fails with ErrRecursiveDefaultAction instead of
// returning another default action.
func (r Resolver) ResolveDefault(target string, action, rest []string) (Resolved, error) {
	synthesized := DefaultActionArgs(target, action, rest)
	resolved, err := r.Resolve(synthesized)
	if err != nil {
		return Resolved{}, fmt.Errorf("default action %q: %w", synthesized[1:], err)
	}
	if resolved.Action == ActionDefault {
		return Resolved{}, fmt.Errorf("%w: %q resolves to the script %q", ErrRecursiveDefaultAction, action, resolved.Target)
	}
	return resolved, nil
}

// DefaultActionArgs synthesizes a full command line from a default action.
// The first element of action is the command, the remaining elements are
// placed after the target, followed by rest. An empty action means run.
func DefaultActionArgs(target string, action, rest []string) []string {
	if len(action) == 0 {
		action = []string{"run"}
	}
	out := make([]string, 0, len(action)+len(rest)+2) //nolint:mnd // tool name and target
	out = append(out, ToolName, action[0], target)
	out = append(out, action[1:]...)
	return append(out, rest...)
}

func (r Resolver) normalizeArgs(kw keyword, args []string) []string {
	cargoArgs, scriptArgs := args, []string(nil)
	if kw.split {
		if idx := slices.Index(args, Separator); idx >= 0 {
			cargoArgs, scriptArgs = args[:idx], args[idx+1:]
		}
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, cargoArgs...)
	if kw.release {
		out = append(out, r.releaseFlag())
	}
	if len(scriptArgs) > 0 {
		out = append(out, Separator)
		out = append(out, scriptArgs...)
	}
	return out
}

func (r Resolver) releaseFlag() string {
	if r.ReleaseFlag == "" {
		return DefaultReleaseFlag
	}
	return r.ReleaseFlag
}

// isScript reports whether the token carries a file extension.
func isScript(token string) bool {
	if strings.HasPrefix(token, "-") {
		return false
	}
	ext := filepath.Ext(token)
	return ext != "" && ext != "."
}
