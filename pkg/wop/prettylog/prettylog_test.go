package prettylog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, log.WarnLevel, Level(false, false))
	assert.Equal(t, log.InfoLevel, Level(true, false))
	assert.Equal(t, log.DebugLevel, Level(false, true))
	assert.Equal(t, log.DebugLevel, Level(true, true))
}

func TestSetupPrettyLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	SetupPrettyLogger(&buf, log.WarnLevel)

	slog.Info("hidden")
	slog.Warn("shown", slog.String("path", "example.rs"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "example.rs")
	assert.Contains(t, out, Prefix)
}
