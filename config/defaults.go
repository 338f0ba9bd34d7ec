package config

import (
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	// DefaultCargoCmd is the default cargo executable.
	DefaultCargoCmd = "cargo"

	// DefaultReleaseFlag is the default flag selecting an optimized build.
	DefaultReleaseFlag = "--release"

	// DefaultVerbose is the default verbose setting.
	DefaultVerbose = false

	// DefaultDebug is the default debug setting.
	DefaultDebug = false
)

// Environment variables overriding the configuration files.
const (
	EnvCache   = "WOP_CACHE"
	EnvCargo   = "WOP_CARGO"
	EnvVerbose = "WOP_VERBOSE"
	EnvDebug   = "WOP_DEBUG"
)

// setDefaults configures default values in the viper instance.
func setDefaults(viperInstance *viper.Viper) {
	viperInstance.SetDefault("cache_dir", "")
	viperInstance.SetDefault("cargo_cmd", DefaultCargoCmd)
	viperInstance.SetDefault("release_flag", DefaultReleaseFlag)
	viperInstance.SetDefault("verbose", DefaultVerbose)
	viperInstance.SetDefault("debug", DefaultDebug)
}
