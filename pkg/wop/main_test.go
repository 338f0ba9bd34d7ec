package wop

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaklabco/cargo-wop/config"
	"github.com/yaklabco/cargo-wop/pkg/command"
	"github.com/yaklabco/cargo-wop/pkg/descriptor"
	"github.com/yaklabco/cargo-wop/pkg/errs"
	"github.com/yaklabco/cargo-wop/pkg/project"
)

const demoScript = `//! ` + "```cargo" + `
//! [dependencies]
//! local = { path = "vendor/local" }
//!
//! [wop.filter]
//! "demo.pdb" = ""
//! "libdemo.rlib" = "demo.rlib"
//! ` + "```" + `

fn main() {}
`

type fixture struct {
	workDir  string
	cacheDir string
	cargoLog string
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		workDir:  filepath.Join(root, "work"),
		cacheDir: filepath.Join(root, "cache"),
		cargoLog: filepath.Join(root, "cargo.log"),
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		logs:     &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(f.workDir, 0o755))
	t.Setenv(fakeCargoEnv, f.cargoLog)
	t.Setenv(fakeExitEnv, "0")
	t.Setenv(fakeEventsEnv, "")
	t.Setenv("NO_COLOR", "1")
	return f
}

func (f *fixture) writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.workDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) run(args ...string) error {
	return Run(RunParams{
		BaseCtx:         context.Background(),
		Stdin:           strings.NewReader(""),
		Stdout:          f.stdout,
		Stderr:          f.stderr,
		WriterForLogger: f.logs,
		Args:            append([]string{command.ToolName}, args...),
		WorkDir:         f.workDir,
		Config: &config.Config{
			CacheDir:    f.cacheDir,
			CargoCmd:    os.Args[0],
			ReleaseFlag: config.DefaultReleaseFlag,
		},
		Env:     project.StaticEnvironment{Dir: f.workDir},
		Verbose: true,
		Version: "v1.2.3",
	})
}

func (f *fixture) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.cargoLog)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func (f *fixture) projectDir(t *testing.T, script string) string {
	t.Helper()
	m := &project.Materializer{Env: project.StaticEnvironment{Dir: f.workDir}, CacheRoot: f.cacheDir}
	dir, err := m.ProjectDir(script)
	require.NoError(t, err)
	return dir
}

func TestRun_Version(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run("--version"))
	assert.Equal(t, "wop v1.2.3\n", f.stdout.String())
}

func TestRun_UsageError(t *testing.T) {
	f := newFixture(t)
	err := f.run("frobnicate", "demo.rs")
	require.ErrorIs(t, err, errs.ErrUsage)
	assert.Equal(t, errs.ExitUsage, errs.ExitStatus(err))
	assert.Empty(t, f.calls(t))
}

func TestRun_ShowManifest(t *testing.T) {
	f := newFixture(t)
	script := f.writeScript(t, "demo.rs", demoScript)

	require.NoError(t, f.run("manifest", "demo.rs"))

	doc, err := descriptor.Parse(f.stdout.String())
	require.NoError(t, err)
	assert.Equal(t, "demo", doc.PackageName())
	assert.NotContains(t, doc, descriptor.OptionsKey)

	deps, ok, err := doc.Table("dependencies")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.workDir, "vendor", "local"), deps["local"].(map[string]any)["path"])

	bins := doc[descriptor.BinKey].([]any)
	require.Len(t, bins, 1)
	assert.Equal(t, script, bins[0].(map[string]any)[descriptor.PathKey])

	assert.NoDirExists(t, f.projectDir(t, script), "manifest must not materialize the project")
	assert.Empty(t, f.calls(t))
}

func TestRun_WriteManifest(t *testing.T) {
	f := newFixture(t)
	f.writeScript(t, "demo.rs", demoScript)

	require.NoError(t, f.run("write-manifest", "demo.rs"))
	data, err := os.ReadFile(filepath.Join(f.workDir, project.ManifestFile))
	require.NoError(t, err)
	doc, err := descriptor.Parse(string(data))
	require.NoError(t, err)
	assert.Equal(t, "demo", doc.PackageName())
	assert.Contains(t, f.logs.String(), "wrote manifest")

	err = f.run("write-manifest", "demo.rs")
	require.ErrorIs(t, err, errs.ErrIO)
	assert.ErrorIs(t, err, os.ErrExist)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}

func TestRun_ToolchainCall(t *testing.T) {
	f := newFixture(t)
	script := f.writeScript(t, "demo.rs", demoScript)
	dir := f.projectDir(t, script)

	require.NoError(t, f.run("run", "demo.rs", "--quiet", "--", "hello"))

	manifest := filepath.Join(dir, project.ManifestFile)
	assert.Equal(t, []string{
		"run --manifest-path " + manifest + " --quiet --release -- hello",
	}, f.calls(t))
	assert.FileExists(t, manifest)
	assert.FileExists(t, filepath.Join(dir, "demo.rs"))
}

func TestRun_ToolchainCall_ExitCode(t *testing.T) {
	f := newFixture(t)
	f.writeScript(t, "demo.rs", demoScript)
	t.Setenv(fakeExitEnv, "3")

	err := f.run("test", "demo.rs")
	require.ErrorIs(t, err, errs.ErrProcess)
	assert.Equal(t, 3, errs.ExitStatus(err))
}

func TestRun_Install(t *testing.T) {
	f := newFixture(t)
	script := f.writeScript(t, "demo.rs", demoScript)

	require.NoError(t, f.run("install", "demo.rs", "--force"))
	assert.Equal(t, []string{"install --path " + f.projectDir(t, script) + " --force"}, f.calls(t))
}

func artifactEvents(t *testing.T, targetDir string, packageID string, files ...string) string {
	t.Helper()
	quoted := make([]string, 0, len(files))
	for _, name := range files {
		path := filepath.Join(targetDir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		quoted = append(quoted, fmt.Sprintf("%q", path))
	}
	return fmt.Sprintf(`{"reason":"compiler-artifact","package_id":%q,"filenames":[%s]}`, packageID, strings.Join(quoted, ","))
}

func setupBuildEvents(t *testing.T) {
	t.Helper()
	targetDir := t.TempDir()
	stream := strings.Join([]string{
		artifactEvents(t, targetDir, "local 0.1.0 (path+file:///vendor/local)", "liblocal.rlib"),
		artifactEvents(t, targetDir, "demo 0.1.0 (path+file:///cache/demo)", "demo", "demo.pdb", "libdemo.rlib"),
		`{"reason":"build-finished","success":true}`,
	}, "\n")
	events := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(events, []byte(stream), 0o644))
	t.Setenv(fakeEventsEnv, events)
}

func TestRun_Build(t *testing.T) {
	f := newFixture(t)
	script := f.writeScript(t, "demo.rs", demoScript)
	setupBuildEvents(t)

	require.NoError(t, f.run("build", "demo.rs"))

	manifest := filepath.Join(f.projectDir(t, script), project.ManifestFile)
	assert.Equal(t, []string{
		"build --manifest-path " + manifest + " --release",
		"build --manifest-path " + manifest + " --message-format json --release",
	}, f.calls(t))

	assert.FileExists(t, filepath.Join(f.workDir, "demo"))
	assert.FileExists(t, filepath.Join(f.workDir, "demo.rlib"))
	assert.NoFileExists(t, filepath.Join(f.workDir, "demo.pdb"))
	assert.NoFileExists(t, filepath.Join(f.workDir, "libdemo.rlib"))
	assert.NoFileExists(t, filepath.Join(f.workDir, "liblocal.rlib"))
	assert.Contains(t, f.logs.String(), "copied artifact")
}

func TestRun_BuildFailureSkipsCollection(t *testing.T) {
	f := newFixture(t)
	f.writeScript(t, "demo.rs", demoScript)
	setupBuildEvents(t)
	t.Setenv(fakeExitEnv, "101")

	err := f.run("build-debug", "demo.rs")
	assert.Equal(t, 101, errs.ExitStatus(err))
	assert.Len(t, f.calls(t), 1)
	assert.NoFileExists(t, filepath.Join(f.workDir, "demo"))
}

func TestRun_DefaultAction(t *testing.T) {
	f := newFixture(t)
	script := f.writeScript(t, "demo.rs", demoScript)

	require.NoError(t, f.run("demo.rs", "--", "x"))
	manifest := filepath.Join(f.projectDir(t, script), project.ManifestFile)
	assert.Equal(t, []string{"run --manifest-path " + manifest + " --release -- x"}, f.calls(t))
}

func TestRun_DefaultActionFromScript(t *testing.T) {
	f := newFixture(t)
	script := f.writeScript(t, "tool.rs", `//! `+"```cargo"+`
//! [wop]
//! default-action = ["build-debug", "--features", "fast"]
//! `+"```"+`
fn main() {}
`)

	require.NoError(t, f.run("tool.rs", "-v"))
	manifest := filepath.Join(f.projectDir(t, script), project.ManifestFile)
	assert.Equal(t, []string{
		"build --manifest-path " + manifest + " --features fast -v",
		"build --manifest-path " + manifest + " --message-format json --features fast -v",
	}, f.calls(t))
}

func TestRun_DefaultActionNeverRecurses(t *testing.T) {
	f := newFixture(t)
	f.writeScript(t, "loop.rs", `//! `+"```cargo"+`
//! [wop]
//! default-action = ["loop.rs"]
//! `+"```"+`
fn main() {}
`)

	err := f.run("loop.rs")
	require.ErrorIs(t, err, command.ErrRecursiveDefaultAction)
	assert.Equal(t, errs.ExitUsage, errs.ExitStatus(err))
	assert.Empty(t, f.calls(t))
}

func TestRun_DescriptorError(t *testing.T) {
	f := newFixture(t)
	f.writeScript(t, "broken.rs", "//! ```cargo\n//! [package]\n")

	err := f.run("run", "broken.rs")
	require.ErrorIs(t, err, errs.ErrDescriptor)
	assert.Contains(t, err.Error(), "broken.rs")
	assert.Empty(t, f.calls(t))
}

func TestRun_MissingScript(t *testing.T) {
	f := newFixture(t)
	err := f.run("build", "missing.rs")
	require.ErrorIs(t, err, errs.ErrIO)
	assert.Equal(t, errs.ExitError, errs.ExitStatus(err))
}

func TestRun_Help(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run("help"))
	assert.Contains(t, f.stdout.String(), "Commands")
	assert.Contains(t, f.stdout.String(), "Configuration")
}

func TestHelpText(t *testing.T) {
	text := HelpText(&config.Config{ReleaseFlag: "--profile=fast"})
	for _, kw := range command.Keywords() {
		assert.Contains(t, text, "`"+kw+"`")
	}
	assert.Contains(t, text, "--profile=fast")
	assert.Contains(t, text, config.EnvCargo)
}

func TestRun_Templates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run("new"))
	assert.Contains(t, f.stdout.String(), "Templates:")
	assert.Contains(t, f.stdout.String(), "bin")
	assert.Contains(t, f.stdout.String(), "lib")

	require.NoError(t, f.run("new", "lib", "mylib.rs"))
	path := filepath.Join(f.workDir, "mylib.rs")
	assert.FileExists(t, path)

	err := f.run("new", "bin", "mylib.rs")
	require.ErrorIs(t, err, errs.ErrIO)

	err = f.run("new", "cdylib", "other.rs")
	require.ErrorIs(t, err, errs.ErrUsage)
	assert.Contains(t, err.Error(), "bin, lib")
}
