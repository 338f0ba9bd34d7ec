package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalSupportsColor(t *testing.T) {
	assert.True(t, TerminalSupportsColor(""))
	assert.True(t, TerminalSupportsColor("xterm-256color"))
	assert.False(t, TerminalSupportsColor("dumb"))
	assert.False(t, TerminalSupportsColor("xterm-mono"))
}

func TestColorEnabled(t *testing.T) {
	t.Setenv(TermEnv, "xterm-256color")
	t.Setenv(NoColorEnv, "1")
	assert.False(t, ColorEnabled())
}

func TestColorEnabled_Term(t *testing.T) {
	t.Setenv(TermEnv, "dumb")
	assert.False(t, ColorEnabled())
}

func TestListStyles_Plain(t *testing.T) {
	title, name := ListStyles(false)
	assert.Equal(t, "Templates:", title.Render("Templates:"))
	assert.Equal(t, "bin", name.Render("bin"))
}
