package wop

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/yaklabco/cargo-wop/config"
	"github.com/yaklabco/cargo-wop/pkg/command"
	"github.com/yaklabco/cargo-wop/pkg/ui"
)

// wordWrapWidth is the column width for glamour markdown rendering.
const wordWrapWidth = 80

// HelpText returns the help page as markdown.
func HelpText(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString(`# cargo wop

Build and run single-file Rust scripts whose dependencies are declared in a
leading doc comment:

` + "```rust" + `
//! ` + "```cargo" + `
//! [dependencies]
//! serde = "1"
//! ` + "```" + `
fn main() {}
` + "```" + `

## Usage

- ` + "`cargo wop <script> [args...]`" + ` runs the script's default action (` + "`run`" + ` unless
  ` + "`[wop] default-action`" + ` says otherwise)
- ` + "`cargo wop <command> <script> [args...]`" + ` runs a cargo command against the script
- ` + "`cargo wop manifest <script>`" + ` prints the generated Cargo.toml
- ` + "`cargo wop write-manifest <script>`" + ` writes Cargo.toml into the current directory
- ` + "`cargo wop new`" + ` lists templates, ` + "`cargo wop new <template> <script>`" + ` creates a script

` + "`run`" + ` and ` + "`build`" + ` add ` + "`" + cfg.ReleaseFlag + "`" + `; use ` + "`run-debug`" + ` or ` + "`build-debug`" + ` to skip it.
Arguments after ` + "`--`" + ` are passed to the script by ` + "`run`" + `. After ` + "`build`" + `, artifacts are
copied into the current directory, renamed or dropped by ` + "`[wop] filter`" + `.

## Commands

`)
	for _, kw := range command.Keywords() {
		b.WriteString("`" + kw + "` ")
	}
	b.WriteString("\n\n## Configuration\n\n")
	if path := cfg.ConfigFile(); path != "" {
		b.WriteString("Loaded from `" + path + "`.\n")
	} else {
		b.WriteString("User config: `" + config.ResolveXDGPaths().ConfigFilePath() + "`.\n")
	}
	b.WriteString("Environment: `" + strings.Join([]string{
		config.EnvCache, config.EnvCargo, config.EnvVerbose, config.EnvDebug,
	}, "`, `") + "`.\n")
	return b.String()
}

// helpStyle returns a glamour style based on terminal background.
func helpStyle() ansi.StyleConfig {
	if !ui.ColorEnabled() {
		return styles.NoTTYStyleConfig
	}
	if !lipgloss.HasDarkBackground(os.Stdin, os.Stdout) {
		return styles.LightStyleConfig
	}
	return styles.DarkStyleConfig
}

// renderMarkdown renders markdown to styled terminal output via glamour.
// Falls back to raw text if rendering fails.
func renderMarkdown(output io.Writer, body string) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(helpStyle()),
		glamour.WithWordWrap(wordWrapWidth),
	)
	if err != nil {
		_, _ = fmt.Fprintln(output, strings.TrimSpace(body))
		return
	}

	rendered, err := renderer.Render(body)
	if err != nil {
		_, _ = fmt.Fprintln(output, strings.TrimSpace(body))
		return
	}

	_, _ = fmt.Fprint(output, rendered)
}
