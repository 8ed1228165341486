package logger

import (
	"github.com/charmbracelet/log"
)

// Setup configures the global logger used through log.Debugf and
// friends. Debug mode turns on timestamps; otherwise only warnings
// and errors are shown.
func Setup(debug bool) {
	log.SetOutput(Output)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}

// Quiet silences everything below errors, used by tests and benchmarks.
func Quiet() {
	log.SetOutput(Output)
	log.SetLevel(log.ErrorLevel)
}
