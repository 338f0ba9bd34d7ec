package descriptor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/cargo-wop/pkg/errs"
)

// Wildcard is the key path segment matching every element of an array or
// every value of a table.
const Wildcard = ""

// KeyPath addresses path-valued fields in a manifest. All segments but the
// last select children (a Wildcard selects all of them); the last segment
// names the field to rewrite.
type KeyPath []string

func (p KeyPath) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		if seg == Wildcard {
			parts[i] = "*"
		} else {
			parts[i] = seg
		}
	}
	return strings.Join(parts, ".")
}

var dependencySections = []string{"dependencies", "dev-dependencies", "build-dependencies"} //nolint:gochecknoglobals // lookup table

// ManifestPaths lists every path-valued field cargo accepts in a manifest.
func ManifestPaths() []KeyPath {
	paths := []KeyPath{
		{PackageKey, "build"},
		{PackageKey, "workspace"},
		{PackageKey, "readme"},
		{PackageKey, "license-file"},
		{LibKey, PathKey},
		{BinKey, Wildcard, PathKey},
		{"example", Wildcard, PathKey},
		{"test", Wildcard, PathKey},
		{"bench", Wildcard, PathKey},
		{"patch", Wildcard, Wildcard, PathKey},
		{"replace", Wildcard, PathKey},
	}
	for _, section := range dependencySections {
		paths = append(paths,
			KeyPath{section, Wildcard, PathKey},
			KeyPath{"target", Wildcard, section, Wildcard, PathKey},
		)
	}
	return paths
}

// RewritePaths resolves every relative path addressed by keyPaths against
// baseDir. Sections missing from the document are skipped; a value of the
// wrong shape where a table or array is required is an error.
func RewritePaths(doc Document, baseDir string, keyPaths []KeyPath) error {
	for _, keyPath := range keyPaths {
		if len(keyPath) == 0 {
			continue
		}
		w := pathWalker{keyPath: keyPath, baseDir: baseDir}
		if err := w.walk(map[string]any(doc), keyPath); err != nil {
			return err
		}
	}
	return nil
}

type pathWalker struct {
	keyPath KeyPath
	baseDir string
}

func (w pathWalker) walk(node any, rest KeyPath) error {
	if len(rest) == 1 {
		return w.rewriteField(node, rest[0])
	}

	seg := rest[0]
	if seg != Wildcard {
		table, ok := node.(map[string]any)
		if !ok {
			return w.shapeError(node)
		}
		child, ok := table[seg]
		if !ok {
			return nil
		}
		return w.walk(child, rest[1:])
	}

	switch container := node.(type) {
	case map[string]any:
		for _, key := range sortedKeys(container) {
			if err := w.walk(container[key], rest[1:]); err != nil {
				return err
			}
		}
	case []any:
		for _, elem := range container {
			if err := w.walk(elem, rest[1:]); err != nil {
				return err
			}
		}
	default:
		return w.shapeError(node)
	}
	return nil
}

func (w pathWalker) rewriteField(node any, field string) error {
	switch parent := node.(type) {
	case map[string]any:
		if field == Wildcard {
			for _, key := range sortedKeys(parent) {
				if err := w.rewriteValue(parent, key); err != nil {
					return err
				}
			}
			return nil
		}
		if _, ok := parent[field]; !ok {
			return nil
		}
		return w.rewriteValue(parent, field)
	case string:
		// shorthand dependency: name = "1.0"
		return nil
	default:
		return w.shapeError(node)
	}
}

func (w pathWalker) rewriteValue(parent map[string]any, key string) error {
	switch value := parent[key].(type) {
	case string:
		parent[key] = resolvePath(w.baseDir, value)
	case bool:
		// package.build = false disables the build script
	default:
		return fmt.Errorf("%w: %s: expected a path string, found %T", errs.ErrNormalization, w.keyPath, value)
	}
	return nil
}

func (w pathWalker) shapeError(node any) error {
	return fmt.Errorf("%w: %s: expected a table or array, found %T", errs.ErrNormalization, w.keyPath, node)
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, filepath.FromSlash(path))
}
