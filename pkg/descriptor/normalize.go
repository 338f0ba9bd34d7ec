package descriptor

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/cargo-wop/pkg/errs"
)

// Defaults filled into the [package] table when absent.
const (
	DefaultVersion = "0.1.0"
	DefaultEdition = "2018"
)

// Normalize completes doc into a standalone manifest for the script at
// scriptPath, which must be absolute. The input is not modified.
//
// The tool-private table is dropped, the [package] table is completed, a
// default [[bin]] target is added if the manifest declares none, every
// library and binary target is pointed at the script, and every relative
// path is resolved against the script's directory.
func Normalize(doc Document, scriptPath string) (Document, error) {
	if !filepath.IsAbs(scriptPath) {
		return nil, fmt.Errorf("%w: script path %q is not absolute", errs.ErrNormalization, scriptPath)
	}
	stem, err := ScriptStem(scriptPath)
	if err != nil {
		return nil, err
	}

	out := doc.Clone()
	if out == nil {
		out = Document{}
	}
	delete(out, OptionsKey)

	name, err := ensurePackage(out, stem)
	if err != nil {
		return nil, err
	}
	if err := ensureTarget(out); err != nil {
		return nil, err
	}
	if err := patchTargets(out, scriptPath, name); err != nil {
		return nil, err
	}
	if err := RewritePaths(out, filepath.Dir(scriptPath), ManifestPaths()); err != nil {
		return nil, err
	}

	return out, nil
}

// ScriptStem returns the file name of path without its extension.
func ScriptStem(path string) (string, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "", fmt.Errorf("%w: can't derive a name from %q", errs.ErrNormalization, path)
	}
	if !utf8.ValidString(stem) {
		return "", fmt.Errorf("%w: file name of %q is not valid UTF-8", errs.ErrNormalization, path)
	}
	return stem, nil
}

func ensurePackage(doc Document, stem string) (string, error) {
	pkg, ok, err := doc.Table(PackageKey)
	if err != nil {
		return "", err
	}
	if !ok {
		pkg = map[string]any{}
		doc[PackageKey] = pkg
	}

	setDefault(pkg, NameKey, stem)
	setDefault(pkg, VersionKey, DefaultVersion)
	setDefault(pkg, EditionKey, DefaultEdition)

	name, ok := pkg[NameKey].(string)
	if !ok {
		return "", fmt.Errorf("%w: package.name is not a string", errs.ErrNormalization)
	}
	return name, nil
}

func ensureTarget(doc Document) error {
	if _, ok := doc[LibKey]; ok {
		return nil
	}
	if raw, ok := doc[BinKey]; ok {
		bins, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("%w: bin is not an array", errs.ErrNormalization)
		}
		if len(bins) > 0 {
			return nil
		}
	}
	doc[BinKey] = []any{map[string]any{}}
	return nil
}

func patchTargets(doc Document, scriptPath, name string) error {
	if lib, ok := doc[LibKey]; ok {
		if err := patchTarget(LibKey, lib, scriptPath, name); err != nil {
			return err
		}
	}

	raw, ok := doc[BinKey]
	if !ok {
		return nil
	}
	bins, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("%w: bin is not an array", errs.ErrNormalization)
	}
	for i, bin := range bins {
		if err := patchTarget(fmt.Sprintf("%s[%d]", BinKey, i), bin, scriptPath, name); err != nil {
			return err
		}
	}
	return nil
}

func patchTarget(field string, target any, scriptPath, name string) error {
	table, ok := target.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s is not a table", errs.ErrNormalization, field)
	}
	table[PathKey] = scriptPath
	setDefault(table, NameKey, name)
	return nil
}

func setDefault(table map[string]any, key string, value any) {
	if _, ok := table[key]; !ok {
		table[key] = value
	}
}
