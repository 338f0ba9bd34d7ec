// Package fsutils holds filesystem helpers.
package fsutils

import (
	"fmt"
	"path/filepath"
)

// TruePath returns the absolute form of path with every symlink resolved.
// The path must exist.
func TruePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlinks: %w", err)
	}
	return resolvedPath, nil
}
