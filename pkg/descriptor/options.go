package descriptor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/yaklabco/cargo-wop/internal/log"
	"github.com/yaklabco/cargo-wop/pkg/errs"
)

// Keys of the tool-private table.
const (
	OptionsKey       = "wop"
	FilterKey        = "filter"
	DefaultActionKey = "default-action"
)

const globMetaChars = "*?[{"

// ProjectOptions holds the settings of the tool-private [wop] table.
type ProjectOptions struct {
	// Filter maps artifact file names to destination file names. An empty
	// destination drops the artifact. Keys containing glob metacharacters
	// are patterns, consulted only when no exact key matches.
	Filter map[string]string

	// DefaultAction is the argument list used when wop is invoked with a
	// script but no command. Nil when not configured.
	DefaultAction []string

	globs []globRule
}

type globRule struct {
	pattern string
	matcher glob.Glob
	dest    string
}

// NewProjectOptions validates the filter patterns and returns the options.
func NewProjectOptions(filter map[string]string, defaultAction []string) (ProjectOptions, error) {
	opts := ProjectOptions{
		Filter:        filter,
		DefaultAction: defaultAction,
	}

	patterns := make([]string, 0, len(filter))
	for pattern := range filter {
		if strings.ContainsAny(pattern, globMetaChars) {
			patterns = append(patterns, pattern)
		}
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return ProjectOptions{}, fmt.Errorf("%w: bad filter pattern %q: %w", errs.ErrDescriptor, pattern, err)
		}
		opts.globs = append(opts.globs, globRule{pattern: pattern, matcher: matcher, dest: filter[pattern]})
	}

	return opts, nil
}

// Destination maps an artifact file name through the filter. The second
// result is false if the artifact should be dropped.
func (o ProjectOptions) Destination(name string) (string, bool) {
	if dest, ok := o.Filter[name]; ok {
		return dest, dest != ""
	}
	for _, rule := range o.globs {
		if rule.matcher.Match(name) {
			slog.Debug("artifact matched filter pattern",
				slog.String(log.Filename, name),
				slog.String(log.Pattern, rule.pattern))
			return rule.dest, rule.dest != ""
		}
	}
	return name, true
}

// SplitOptions removes the tool-private table from doc and decodes it.
func SplitOptions(doc Document) (ProjectOptions, error) {
	raw, ok := doc[OptionsKey]
	if !ok {
		return ProjectOptions{}, nil
	}
	delete(doc, OptionsKey)

	table, ok := raw.(map[string]any)
	if !ok {
		return ProjectOptions{}, fmt.Errorf("%w: [%s] is not a table", errs.ErrDescriptor, OptionsKey)
	}

	filter, err := decodeFilter(table[FilterKey])
	if err != nil {
		return ProjectOptions{}, err
	}
	defaultAction, err := decodeStringArray(table[DefaultActionKey])
	if err != nil {
		return ProjectOptions{}, err
	}

	for _, key := range sortedKeys(table) {
		if key != FilterKey && key != DefaultActionKey {
			slog.Warn("ignoring unknown key in manifest", slog.String(log.Key, OptionsKey+"."+key))
		}
	}

	return NewProjectOptions(filter, defaultAction)
}

func decodeFilter(raw any) (map[string]string, error) {
	if raw == nil {
		return map[string]string{}, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a table", errs.ErrDescriptor, OptionsKey, FilterKey)
	}
	filter := make(map[string]string, len(table))
	for src, v := range table {
		dest, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s.%q is not a string", errs.ErrDescriptor, OptionsKey, FilterKey, src)
		}
		filter[src] = dest
	}
	return filter, nil
}

func decodeStringArray(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not an array", errs.ErrDescriptor, OptionsKey, DefaultActionKey)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s[%d] is not a string", errs.ErrDescriptor, OptionsKey, DefaultActionKey, i)
		}
		out = append(out, s)
	}
	return out, nil
}
