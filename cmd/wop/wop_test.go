package wop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaklabco/cargo-wop/config"
	"github.com/yaklabco/cargo-wop/pkg/wop"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, key := range []string{config.EnvCache, config.EnvCargo, config.EnvVerbose, config.EnvDebug} {
		t.Setenv(key, "")
	}
}

func TestPassesArgsThrough(t *testing.T) {
	isolateConfig(t)
	ctx := t.Context()
	called := false
	runFunc := func(params wop.RunParams) error {
		called = true
		assert.Equal(t, []string{"wop", "run", "script.rs", "--verbose", "--", "-x"}, params.Args)
		assert.Equal(t, config.DefaultCargoCmd, params.Config.CargoCmd)
		assert.False(t, params.Verbose)
		assert.NotEmpty(t, params.Version)
		return nil
	}
	rootCmd := NewRootCmd(ctx, withRunFunc(runFunc))
	rootCmd.SetArgs([]string{"wop", "run", "script.rs", "--verbose", "--", "-x"})
	require.NoError(t, ExecuteWithFang(ctx, rootCmd))
	assert.True(t, called)
}

func TestHelpFlagIsNotIntercepted(t *testing.T) {
	isolateConfig(t)
	ctx := t.Context()
	runFunc := func(params wop.RunParams) error {
		assert.Equal(t, []string{"wop", "--help"}, params.Args)
		return nil
	}
	rootCmd := NewRootCmd(ctx, withRunFunc(runFunc))
	rootCmd.SetArgs([]string{"wop", "--help"})
	require.NoError(t, ExecuteWithFang(ctx, rootCmd))
}

func TestVerboseEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv(config.EnvVerbose, "true")
	t.Setenv(config.EnvCargo, "/opt/cargo")
	ctx := t.Context()
	runFunc := func(params wop.RunParams) error {
		assert.True(t, params.Verbose)
		assert.Equal(t, "/opt/cargo", params.Config.CargoCmd)
		return nil
	}
	rootCmd := NewRootCmd(ctx, withRunFunc(runFunc))
	rootCmd.SetArgs([]string{"wop", "help"})
	require.NoError(t, ExecuteWithFang(ctx, rootCmd))
}

func TestRunErrorIsReturned(t *testing.T) {
	isolateConfig(t)
	ctx := t.Context()
	rootCmd := NewRootCmd(ctx)
	rootCmd.SetArgs([]string{"wop", "frobnicate", "script.rs"})
	err := ExecuteWithFang(ctx, rootCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}
