// Package logger provides charmbracelet/log loggers preconfigured for
// wordcraft packages. Everything goes to stderr; stdout belongs to the
// IPC stream.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Output is where every logger built here writes.
var Output io.Writer = os.Stderr

// New creates a prefixed charm log that follows the global level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(Output, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: log.GetLevel() <= log.DebugLevel,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a charm log with a fixed level, independent of
// the global one. The version banner uses it.
func NewWithConfig(prefix string, level log.Level, caller, showTimestamp bool, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(Output, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       formatter,
	})
}
