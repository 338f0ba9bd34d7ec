package project

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/yaklabco/cargo-wop/pkg/errs"
	"github.com/yaklabco/cargo-wop/pkg/fsutils"
)

// Environment is the slice of the operating system the materializer
// depends on.
type Environment interface {
	// LookupEnv returns the value of an environment variable.
	LookupEnv(key string) (string, bool)
	// Canonicalize returns the absolute, symlink-free form of path.
	Canonicalize(path string) (string, error)
}

// OSEnvironment is the Environment of the running process.
type OSEnvironment struct{}

func (OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (OSEnvironment) Canonicalize(path string) (string, error) {
	resolved, err := fsutils.TruePath(path)
	if err != nil {
		return "", errs.IOf("can't resolve %s: %w", path, err)
	}
	return resolved, nil
}

// StaticEnvironment is a deterministic Environment: variables come from
// Vars and paths are made absolute relative to Dir without touching the
// filesystem.
type StaticEnvironment struct {
	Vars map[string]string
	Dir  string
}

func (e StaticEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := e.Vars[key]
	return v, ok
}

func (e StaticEnvironment) Canonicalize(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if e.Dir == "" {
		return "", errs.IOf("can't resolve relative path %s: no working directory", path)
	}
	return filepath.Join(e.Dir, path), nil
}

// Environment variables consulted for the cache root.
const (
	CargoHomeEnv   = "CARGO_HOME"
	HomeEnv        = "HOME"
	UserProfileEnv = "USERPROFILE"
)

// CargoHome returns $CARGO_HOME, falling back to .cargo in the user's home
// directory.
func CargoHome(env Environment) (string, error) {
	if dir, ok := env.LookupEnv(CargoHomeEnv); ok && dir != "" {
		return dir, nil
	}
	homeVar := HomeEnv
	if runtime.GOOS == "windows" {
		homeVar = UserProfileEnv
	}
	home, ok := env.LookupEnv(homeVar)
	if !ok || home == "" {
		return "", errs.IOf("can't locate the cargo home: neither %s nor %s is set", CargoHomeEnv, homeVar)
	}
	return filepath.Join(home, ".cargo"), nil
}
