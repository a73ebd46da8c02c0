package log

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger replaces the process-wide logger. It also becomes slog's
// default, so records from slog's package-level functions end up in the same
// place.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
	if logger != nil {
		slog.SetDefault(logger.Logger)
	}
}

// DefaultLogger returns the process-wide logger, creating one from
// DefaultConfig on first use.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, Default())
	return defaultLogger.Load()
}
