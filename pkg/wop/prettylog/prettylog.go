package prettylog

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Prefix tags every log line written by wop.
const Prefix = "wop"

// SetupPrettyLogger installs a charmbracelet handler writing to
// writerForLogger as the default slog logger and returns it. Callers can use
// SetLevel on the returned handler to change the level.
func SetupPrettyLogger(writerForLogger io.Writer, level log.Level) *log.Logger {
	logHandler := log.NewWithOptions(
		writerForLogger,
		log.Options{
			Level:           level,
			Prefix:          Prefix,
			ReportTimestamp: level <= log.DebugLevel,
			ReportCaller:    level <= log.DebugLevel,
		},
	)
	slog.SetDefault(slog.New(logHandler))

	return logHandler
}

// Level picks the handler level for the verbose and debug switches.
func Level(verbose, debug bool) log.Level {
	switch {
	case debug:
		return log.DebugLevel
	case verbose:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}
