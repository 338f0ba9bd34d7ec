package wop

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaklabco/cargo-wop/pkg/descriptor"
)

func TestTemplates_RenderValidManifest(t *testing.T) {
	for _, tmpl := range Templates() {
		t.Run(tmpl.ID, func(t *testing.T) {
			text, err := tmpl.Render("/scripts/my-tool.rs")
			require.NoError(t, err)

			manifest, err := descriptor.Extract(strings.NewReader(text))
			require.NoError(t, err)
			doc, err := descriptor.Parse(manifest)
			require.NoError(t, err)
			assert.Equal(t, "my-tool", doc.PackageName())

			_, err = descriptor.SplitOptions(doc)
			require.NoError(t, err)
			assert.Contains(t, text, "Hello from my-tool!")
		})
	}
}

func TestTemplates_LibOptions(t *testing.T) {
	tmpl, ok := FindTemplate("lib")
	require.True(t, ok)
	text, err := tmpl.Render("demo.rs")
	require.NoError(t, err)

	manifest, err := descriptor.Extract(strings.NewReader(text))
	require.NoError(t, err)
	doc, err := descriptor.Parse(manifest)
	require.NoError(t, err)
	opts, err := descriptor.SplitOptions(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"build"}, opts.DefaultAction)
	_, keep := opts.Destination("libdemo.rmeta")
	assert.False(t, keep)
	dest, keep := opts.Destination("libdemo.rlib")
	assert.True(t, keep)
	assert.Equal(t, "libdemo.rlib", dest)
}

func TestFindTemplate_Unknown(t *testing.T) {
	_, ok := FindTemplate("cdylib")
	assert.False(t, ok)
}

func TestCreateFromTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.rs")
	require.NoError(t, CreateFromTemplate("bin", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), descriptor.ManifestStartLine))

	require.Error(t, CreateFromTemplate("bin", path))
}

func TestListTemplates(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	ListTemplates(&buf)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Templates:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  bin  A single-file binary."), lines[1])
	assert.Contains(t, buf.String(), "  lib  A single-file library.")
}
