package wop

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/x/term"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/yaklabco/cargo-wop/pkg/descriptor"
	"github.com/yaklabco/cargo-wop/pkg/errs"
	"github.com/yaklabco/cargo-wop/pkg/ui"
)

const (
	fallbackTermWidth = 80
	termWidthFloor    = 40
	columnsEnv        = "COLUMNS"

	scriptMode = 0o644
)

// Template is a starting point for a new script.
type Template struct {
	ID          string
	Description string

	manifest string
	source   string
}

type templateData struct {
	Name string
}

//nolint:gochecknoglobals // fixed set of templates
var templates = []Template{
	{
		ID:          "bin",
		Description: "A single-file binary. Running the script without a command runs it.",
		manifest: `[package]
name = "{{.Name}}"
version = "0.1.0"
edition = "2021"

[dependencies]
`,
		source: `
fn main() {
    println!("Hello from {{.Name}}!");
}
`,
	},
	{
		ID: "lib",
		Description: "A single-file library. Running the script without a command builds it " +
			"and copies the library into the current directory, dropping metadata files.",
		manifest: `[package]
name = "{{.Name}}"
version = "0.1.0"
edition = "2021"

[lib]

[dependencies]

[wop]
default-action = ["build"]
filter = { "*.rmeta" = "" }
`,
		source: `
pub fn hello() -> &'static str {
    "Hello from {{.Name}}!"
}

#[cfg(test)]
mod tests {
    #[test]
    fn says_hello() {
        assert!(super::hello().starts_with("Hello"));
    }
}
`,
	},
}

// Templates returns the available templates.
func Templates() []Template {
	return templates
}

// FindTemplate returns the template with the given id.
func FindTemplate(id string) (Template, bool) {
	return lo.Find(templates, func(t Template) bool { return t.ID == id })
}

// Render produces the script text for a script at path.
func (t Template) Render(path string) (string, error) {
	stem, err := descriptor.ScriptStem(path)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(t.ID).Parse(descriptor.Embed(t.manifest) + t.source)
	if err != nil {
		return "", fmt.Errorf("can't parse template %s: %w", t.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Name: stem}); err != nil {
		return "", fmt.Errorf("can't execute template %s: %w", t.ID, err)
	}
	return buf.String(), nil
}

// CreateFromTemplate writes the template to path. An existing file is
// never overwritten.
func CreateFromTemplate(id, path string) error {
	tmpl, ok := FindTemplate(id)
	if !ok {
		return errs.Usagef("unknown template %q (available: %s)", id,
			strings.Join(lo.Map(templates, func(t Template, _ int) string { return t.ID }), ", "))
	}
	text, err := tmpl.Render(path)
	if err != nil {
		return err
	}

	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, scriptMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return errs.IOf("refusing to overwrite %s: %w", path, err)
		}
		return errs.IOf("can't create %s: %w", path, err)
	}
	defer func() { _ = fd.Close() }()

	if _, err := io.WriteString(fd, text); err != nil {
		return errs.IOf("can't write %s: %w", path, err)
	}
	return nil
}

// ListTemplates writes the template ids and descriptions to out.
func ListTemplates(out io.Writer) {
	colorEnabled := ui.ColorEnabled()
	titleStyle, nameStyle := ui.ListStyles(colorEnabled)
	const indent = "  "

	maxID := 0
	for _, t := range templates {
		maxID = max(maxID, len(t.ID))
	}
	descIndent := strings.Repeat(" ", len(indent)+maxID+len(indent))
	width := max(termWidthFloor, detectTermWidth()) - len(descIndent)

	_, _ = fmt.Fprintln(out, titleStyle.Render("Templates:"))
	for _, t := range templates {
		lines := strings.Split(wordwrap.String(t.Description, width), "\n")
		padding := strings.Repeat(" ", maxID-len(t.ID))
		_, _ = fmt.Fprintf(out, "%s%s%s%s%s\n", indent, nameStyle.Render(t.ID), padding, indent, lines[0])
		for _, line := range lines[1:] {
			_, _ = fmt.Fprintln(out, descIndent+line)
		}
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Create a script with: cargo wop new <template> <script>")
}

// detectTermWidth returns the terminal width to use for wrapping.
// It prefers the actual stdout size, falls back to $COLUMNS, then 80.
func detectTermWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	if cols := os.Getenv(columnsEnv); cols != "" {
		if v, err := strconv.Atoi(cols); err == nil && v > 0 {
			return v
		}
	}
	return fallbackTermWidth
}
