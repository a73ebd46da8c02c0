// Package log wraps log/slog with the configuration and error conventions
// used across forecast.
package log

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

// Logger is a slog.Logger that knows how to log forecast errors. With and
// WithGroup return *Logger so derived loggers keep those helpers.
type Logger struct {
	*slog.Logger
	config Config
}

// New creates a Logger for config.
func New(config Config) *Logger {
	w := config.Output
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	if config.ServiceName != "" {
		logger = logger.With("service", config.ServiceName, "version", config.ServiceVersion)
	}
	return &Logger{Logger: logger, config: config}
}

// Default creates a logger from DefaultConfig.
func Default() *Logger {
	return New(DefaultConfig())
}

// Development creates a logger from DevelopmentConfig.
func Development() *Logger {
	return New(DevelopmentConfig())
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), config: l.config}
}

func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name), config: l.config}
}

// WithError adds err to every record of the returned logger.
// Validation errors contribute their code and location trail, configuration
// errors their code and suggestions.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With(errorArgs(err, "error")...)
}

// LogError logs err at error level with its structured details.
func (l *Logger) LogError(err error) {
	l.LogErrorContext(context.Background(), err)
}

// LogErrorContext is LogError with a context.
func (l *Logger) LogErrorContext(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.ErrorContext(ctx, "operation failed", errorArgs(err, "error_message")...)
}

// Config returns the configuration the logger was created with.
func (l *Logger) Config() Config {
	return l.config
}

// errorArgs flattens err into log attributes. msgKey names the attribute
// holding the message.
func errorArgs(err error, msgKey string) []any {
	// A ForecastError may wrap a ValidationError; the outer code wins.
	var ferr *errors.ForecastError
	if stderrors.As(err, &ferr) {
		args := []any{msgKey, ferr.Message, "error_code", string(ferr.Code)}
		if len(ferr.Suggestions) > 0 {
			args = append(args, "suggestions", ferr.Suggestions)
		}
		if ferr.Cause != nil {
			args = append(args, "cause", ferr.Cause.Error())
		}
		return args
	}

	var verr *errors.ValidationError
	if stderrors.As(err, &verr) {
		args := []any{msgKey, verr.Cause, "error_code", string(verr.Code)}
		if trail := verr.Trail(); len(trail) > 0 {
			args = append(args, "trail", trail)
		}
		return args
	}

	return []any{msgKey, err.Error()}
}
