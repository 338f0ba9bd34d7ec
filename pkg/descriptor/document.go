// Package descriptor extracts the cargo manifest embedded in a script's
// leading doc comment and completes it into a standalone Cargo.toml.
package descriptor

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/yaklabco/cargo-wop/pkg/errs"
)

// Document is a generic TOML document: tables are map[string]any, arrays
// are []any and leaves are the scalar types produced by go-toml.
type Document map[string]any

// Well-known manifest keys.
const (
	PackageKey = "package"
	LibKey     = "lib"
	BinKey     = "bin"
	NameKey    = "name"
	PathKey    = "path"
	VersionKey = "version"
	EditionKey = "edition"
)

// Parse decodes the extracted manifest text. An empty text yields an empty
// document.
func Parse(text string) (Document, error) {
	doc := Document{}
	if text == "" {
		return doc, nil
	}
	if err := toml.Unmarshal([]byte(text), (*map[string]any)(&doc)); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrDescriptor, err)
	}
	return doc, nil
}

// Encode renders the document as TOML. Keys are emitted in sorted order so
// the output is stable across runs.
func Encode(doc Document) ([]byte, error) {
	out, err := toml.Marshal(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: can't encode manifest: %w", errs.ErrNormalization, err)
	}
	return out, nil
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneTable(d))
}

// Table returns the sub-table stored under key. The second result reports
// whether key is present; a present non-table value is an error.
func (d Document) Table(key string) (map[string]any, bool, error) {
	v, ok := d[key]
	if !ok {
		return nil, false, nil
	}
	table, ok := v.(map[string]any)
	if !ok {
		return nil, true, fmt.Errorf("%w: %s is not a table", errs.ErrNormalization, key)
	}
	return table, true, nil
}

// PackageName returns package.name, or "" if it is missing or not a string.
func (d Document) PackageName() string {
	pkg, ok := d[PackageKey].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := pkg[NameKey].(string)
	return name
}

func cloneTable(table map[string]any) map[string]any {
	out := make(map[string]any, len(table))
	for k, v := range table {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return cloneTable(value)
	case Document:
		return cloneTable(value)
	case []any:
		out := make([]any, len(value))
		for i := range value {
			out[i] = cloneValue(value[i])
		}
		return out
	default:
		return value
	}
}

func sortedKeys(table map[string]any) []string {
	return slices.Sorted(maps.Keys(table))
}
