// Package project materializes a script into a cargo project inside the
// wop cache.
//
// The cache holds one directory per script, keyed by the script's
// canonical path:
//
//	{cache root}/wop-cache/{stem}-{hash8}/
//	    Cargo.toml
//	    {script file name}
//
// The directory is reused across runs but its contents are rewritten on
// every invocation. Concurrent invocations on the same script are not
// coordinated and may interleave their writes.
package project

import (
	"crypto/sha1" //nolint:gosec // cache key, not a security boundary
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yaklabco/cargo-wop/internal/ish"
	"github.com/yaklabco/cargo-wop/internal/log"
	"github.com/yaklabco/cargo-wop/pkg/descriptor"
	"github.com/yaklabco/cargo-wop/pkg/errs"
)

const (
	// CacheSubdir is the directory under the cache root holding projects.
	CacheSubdir = "wop-cache"

	// ManifestFile is the name of the written manifest.
	ManifestFile = "Cargo.toml"

	hashLen = 8

	dirMode  = 0o755
	fileMode = 0o644
)

// Project is a script prepared for cargo.
type Project struct {
	// Dir is the cache directory of the project.
	Dir string
	// ManifestPath is Dir/Cargo.toml.
	ManifestPath string
	// ScriptPath is the copy of the script inside Dir.
	ScriptPath string
	// Source is the canonical path of the original script.
	Source string
	// Name is the normalized package name.
	Name string

	Manifest descriptor.Document
	Options  descriptor.ProjectOptions
	Warnings []descriptor.Warning
}

// Materializer prepares and writes cached projects.
type Materializer struct {
	Env Environment
	// CacheRoot overrides the cargo home as the cache root.
	CacheRoot string
}

// NewMaterializer returns a Materializer for the running process.
func NewMaterializer(cacheRoot string) *Materializer {
	return &Materializer{Env: OSEnvironment{}, CacheRoot: cacheRoot}
}

// CacheDir returns the directory holding all cached projects.
func (m *Materializer) CacheDir() (string, error) {
	root := m.CacheRoot
	if root == "" {
		var err error
		root, err = CargoHome(m.env())
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(root, CacheSubdir), nil
}

// ProjectDir returns the cache directory for the script at the canonical
// path source.
func (m *Materializer) ProjectDir(source string) (string, error) {
	stem, err := descriptor.ScriptStem(source)
	if err != nil {
		return "", err
	}
	cacheDir, err := m.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, stem+"-"+HashPath(source)), nil
}

// HashPath returns the first eight hex digits of the SHA-1 of path.
func HashPath(path string) string {
	sum := sha1.Sum([]byte(path)) //nolint:gosec // cache key
	return hex.EncodeToString(sum[:])[:hashLen]
}

// Prepare reads and normalizes the script's manifest without writing
// anything.
func (m *Materializer) Prepare(target string) (*Project, error) {
	source, err := m.env().Canonicalize(target)
	if err != nil {
		return nil, err
	}

	doc, err := descriptor.ExtractFile(source)
	if err != nil {
		return nil, err
	}
	opts, err := descriptor.SplitOptions(doc)
	if err != nil {
		return nil, err
	}
	manifest, err := descriptor.Normalize(doc, source)
	if err != nil {
		return nil, err
	}
	dir, err := m.ProjectDir(source)
	if err != nil {
		return nil, err
	}

	proj := &Project{
		Dir:          dir,
		ManifestPath: filepath.Join(dir, ManifestFile),
		ScriptPath:   filepath.Join(dir, filepath.Base(source)),
		Source:       source,
		Name:         manifest.PackageName(),
		Manifest:     manifest,
		Options:      opts,
		Warnings:     descriptor.Validate(manifest),
	}
	for _, w := range proj.Warnings {
		slog.Warn(w.Message, slog.String(log.Field, w.Field), slog.String(log.Path, source))
	}
	return proj, nil
}

// Materialize prepares the script and writes the project to the cache.
func (m *Materializer) Materialize(target string) (*Project, error) {
	proj, err := m.Prepare(target)
	if err != nil {
		return nil, err
	}
	if err := proj.Write(); err != nil {
		return nil, err
	}
	return proj, nil
}

// ManifestTOML renders the normalized manifest.
func (p *Project) ManifestTOML() ([]byte, error) {
	return descriptor.Encode(p.Manifest)
}

// Write creates the project directory and overwrites the manifest and the
// script copy.
func (p *Project) Write() error {
	if err := os.MkdirAll(p.Dir, dirMode); err != nil {
		return errs.IOf("can't create %s: %w", p.Dir, err)
	}
	data, err := p.ManifestTOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.ManifestPath, data, fileMode); err != nil {
		return errs.IOf("can't write %s: %w", p.ManifestPath, err)
	}
	if err := ish.Copy(p.ScriptPath, p.Source); err != nil {
		return err
	}
	slog.Debug("materialized project", slog.String(log.Dir, p.Dir), slog.String(log.Name, p.Name))
	return nil
}

func (m *Materializer) env() Environment {
	if m.Env == nil {
		return OSEnvironment{}
	}
	return m.Env
}
