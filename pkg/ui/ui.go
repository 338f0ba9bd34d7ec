package ui

import (
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/samber/lo"
)

// Environment variables that affect colour output.
const (
	NoColorEnv = "NO_COLOR"
	TermEnv    = "TERM"
)

// noColorTERMs defines terminals that do not support ANSI color output.
// Keep this list small and conservative.
var noColorTERMs = lo.Keyify([]string{ //nolint:gochecknoglobals // constant set
	"dumb",
	"vt100",
	"cygwin",
	"xterm-mono",
})

// GetFangScheme returns the same light/dark-aware color scheme fang uses.
func GetFangScheme() fang.ColorScheme {
	// This mirrors fang.mustColorscheme(DefaultColorScheme)
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
	return fang.DefaultColorScheme(lipgloss.LightDark(isDark))
}

// TerminalSupportsColor returns true if the given TERM value is not in the
// known-no-color blacklist. An empty term is treated as supporting colors
// (letting Lipgloss handle further TTY detection).
func TerminalSupportsColor(term string) bool {
	if term == "" {
		return true
	}
	_, blacklisted := noColorTERMs[term]
	return !blacklisted
}

// ColorEnabled reports whether styled output should be produced, honouring
// NO_COLOR and the TERM blacklist.
func ColorEnabled() bool {
	if _, set := os.LookupEnv(NoColorEnv); set {
		return false
	}
	return TerminalSupportsColor(os.Getenv(TermEnv))
}

// ListStyles returns the styles used for headings and names in listings.
// Both are plain when colour is disabled.
func ListStyles(colorEnabled bool) (lipgloss.Style, lipgloss.Style) {
	titleStyle := lipgloss.NewStyle().Bold(colorEnabled)
	nameStyle := lipgloss.NewStyle().Bold(colorEnabled)
	if colorEnabled {
		cs := GetFangScheme()
		titleStyle = titleStyle.Foreground(cs.QuotedString)
		nameStyle = nameStyle.Foreground(cs.Flag)
	}
	return titleStyle, nameStyle
}
