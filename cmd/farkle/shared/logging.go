package shared

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures console logging for commands
func SetupLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// ParseLevel maps a configured level name onto the logger, falling back to
// info for unknown names.
func ParseLevel(logger *log.Logger, name string) {
	level, err := log.ParseLevel(name)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
}
