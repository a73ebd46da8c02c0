package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	logger, slogDefault := defaultLogger.Load(), slog.Default()
	t.Cleanup(func() {
		defaultLogger.Store(logger)
		slog.SetDefault(slogDefault)
	})
}

func TestDefaultLoggerIsCreatedOnce(t *testing.T) {
	restoreDefault(t)
	defaultLogger.Store(nil)

	first := DefaultLogger()
	assert.NotNil(t, first)
	assert.Same(t, first, DefaultLogger())
	assert.Equal(t, DefaultConfig().ServiceName, first.Config().ServiceName)
}

func TestSetDefaultLogger(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	custom := New(Config{Level: LevelDebug, Format: FormatText, Output: &buf})
	SetDefaultLogger(custom)

	assert.Same(t, custom, DefaultLogger())

	slog.Debug("through slog", "task", "T1")
	assert.True(t, strings.Contains(buf.String(), "through slog"), "slog's default should write through the custom logger, got %q", buf.String())
}

func TestDefaultLoggerConcurrent(t *testing.T) {
	restoreDefault(t)
	defaultLogger.Store(nil)

	done := make(chan *Logger, 10)
	for range 10 {
		go func() { done <- DefaultLogger() }()
	}

	first := <-done
	for range 9 {
		assert.Same(t, first, <-done)
	}
}
