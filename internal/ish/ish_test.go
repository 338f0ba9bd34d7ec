package ish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaklabco/cargo-wop/pkg/errs"
)

func TestExec_Output(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	ran, err := Exec(context.Background(), nil, out, errOut, os.Args[0], "-helper", "-stdout", "hello", "-stderr", "oops")
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "hello\n", out.String())
	assert.Equal(t, "oops\n", errOut.String())
}

func TestExec_PrintArgs(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := Exec(context.Background(), nil, out, nil, os.Args[0], "-printArgs", "--", "build", "--manifest-path", "x")
	require.NoError(t, err)
	assert.Equal(t, "[build --manifest-path x]\n", out.String())
}

func TestExitCode(t *testing.T) {
	ran, err := Exec(context.Background(), nil, nil, nil, os.Args[0], "-helper", "-exit", "99")
	require.Error(t, err)
	assert.True(t, ran)
	assert.Equal(t, 99, ExitStatus(err))
	assert.Equal(t, 99, errs.ExitStatus(err))

	var procErr *errs.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, os.Args[0], procErr.Cmd)
	require.ErrorIs(t, err, errs.ErrProcess)
}

func TestNotRun(t *testing.T) {
	ran, err := Exec(context.Background(), nil, nil, nil, "thiswontwork")
	require.Error(t, err)
	assert.False(t, ran)
	require.ErrorIs(t, err, errs.ErrProcess)
	assert.Equal(t, errs.ExitError, errs.ExitStatus(err))
}

func TestCmdRan(t *testing.T) {
	assert.True(t, CmdRan(nil))
	assert.False(t, CmdRan(os.ErrNotExist))
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.rs")
	dst := filepath.Join(dir, "dst.rs")
	require.NoError(t, os.WriteFile(src, []byte("fn main() {}\n"), 0o600))
	require.NoError(t, os.WriteFile(dst, []byte("a much longer stale content\n"), 0o600))

	require.NoError(t, Copy(dst, src))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", string(data))

	err = Copy(dst, filepath.Join(dir, "missing.rs"))
	require.ErrorIs(t, err, errs.ErrIO)
}
