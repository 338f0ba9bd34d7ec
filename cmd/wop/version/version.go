// Package version reports the version of the running binary.
package version

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/yaklabco/cargo-wop/pkg/ui"
)

// Version, Commit and BuildDate can be set at build time, e.g.
//
//	-ldflags "-X github.com/yaklabco/cargo-wop/cmd/wop/version.Version=v0.1.0"
//
// BuildDate is an RFC3339 timestamp. Unset values are taken from the Go
// build info when available.
//
//nolint:gochecknoglobals // Populated by goreleaser ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

const (
	devVersion     = "dev"
	develVersion   = "(devel)"
	dirtySuffix    = "-dirty"
	settingRev     = "vcs.revision"
	settingTime    = "vcs.time"
	settingDirty   = "vcs.modified"
	separator      = "-"
	maxCommitChars = 12
)

// Info is the version, commit and build time of the binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime time.Time
}

// Detect combines the ldflags values with the Go build info. Precedence for
// the version: ldflags, the module version of `go install module@version`,
// the VCS revision (with -dirty), then "dev".
func Detect(_ context.Context) Info {
	info := Info{
		Version: strings.TrimSpace(Version),
		Commit:  strings.TrimSpace(Commit),
	}
	if t, ok := parseTime(BuildDate); ok {
		info.BuildTime = t
	}

	settings := map[string]string{}
	mainVersion := ""
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		mainVersion = strings.TrimSpace(bi.Main.Version)
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}
	}

	if info.Version == "" || info.Version == devVersion {
		switch rev := settings[settingRev]; {
		case mainVersion != "" && mainVersion != develVersion:
			info.Version = mainVersion
		case rev != "":
			info.Version = rev
			if settings[settingDirty] == "true" {
				info.Version += dirtySuffix
			}
		default:
			info.Version = devVersion
		}
	}
	if info.Commit == "" {
		info.Commit = settings[settingRev]
	}
	if info.BuildTime.IsZero() {
		if t, ok := parseTime(settings[settingTime]); ok {
			info.BuildTime = t
		}
	}
	return info
}

func parseTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parts returns the version, short commit and local build time, omitting
// the ones that are unknown or repeat the version.
func (i Info) parts() []string {
	parts := []string{i.Version}
	if c := i.Commit; c != "" && !strings.HasPrefix(i.Version, c) {
		if len(c) > maxCommitChars {
			c = c[:maxCommitChars]
		}
		parts = append(parts, c)
	}
	if !i.BuildTime.IsZero() {
		parts = append(parts, i.BuildTime.In(time.Local).Format(time.RFC3339))
	}
	return parts
}

// String joins the known parts with "-".
func (i Info) String() string {
	return strings.Join(i.parts(), separator)
}

// Colorized renders the version line with fang-consistent colors.
func (i Info) Colorized() string {
	cs := ui.GetFangScheme()
	styles := []lipgloss.Style{
		lipgloss.NewStyle().Foreground(cs.QuotedString),
		lipgloss.NewStyle().Foreground(cs.Program),
		lipgloss.NewStyle().Foreground(cs.Flag),
	}
	parts := i.parts()
	for n := range parts {
		parts[n] = styles[min(n, len(styles)-1)].Render(parts[n])
	}
	return strings.Join(parts, lipgloss.NewStyle().Foreground(cs.Base).Render(separator))
}

// OverallVersionString renders the version line without colors.
func OverallVersionString(ctx context.Context) string {
	return Detect(ctx).String()
}

// OverallVersionStringColorized renders the version line with colors.
func OverallVersionStringColorized(ctx context.Context) string {
	return Detect(ctx).Colorized()
}
