// Package logger wraps charmbracelet/log behind a process-wide default
// logger so every subsystem logs with consistent levels and formatting.
package logger

import (
	"os"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
)

// defaultLogger is the global default logger instance stored atomically.
var defaultLogger atomic.Value

func init() {
	defaultLogger.Store(charm.New(os.Stderr))
}

// Default returns the global default logger instance.
func Default() *charm.Logger {
	return defaultLogger.Load().(*charm.Logger)
}

// SetDefault sets a new global default logger instance.
func SetDefault(logger *charm.Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}

// SetLevel parses and applies a log level on the default logger.
// Unknown levels leave the current level unchanged and return the error.
func SetLevel(level string) error {
	parsed, err := charm.ParseLevel(level)
	if err != nil {
		return err
	}
	Default().SetLevel(parsed)
	return nil
}

// Debug logs a debug message with optional key/value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Default().Debug(msg, keyvals...)
}

// Info logs an info message with optional key/value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Default().Info(msg, keyvals...)
}

// Warn logs a warning message with optional key/value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Default().Warn(msg, keyvals...)
}

// Error logs an error message with optional key/value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Default().Error(msg, keyvals...)
}
