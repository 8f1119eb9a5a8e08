package logger

import (
	"io"
	"os"
)

// Log levels accepted in configuration.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// New returns a console logger writing to stdout at the given level.
// Unknown levels fall back to debug.
func New(level string) *Logger {
	return newZapLogger(level, os.Stdout)
}

// NewWithWriter is like New but writes to w. Used by tests to capture output.
func NewWithWriter(level string, w io.Writer) *Logger {
	return newZapLogger(level, w)
}
