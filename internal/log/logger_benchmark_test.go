package log

import (
	"io"
	"testing"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

func benchLogger(level Level, format Format) *Logger {
	return New(Config{
		Level:       level,
		Format:      format,
		Output:      io.Discard,
		ServiceName: "benchmark",
	})
}

func BenchmarkLoggerInfo(b *testing.B) {
	logger := benchLogger(LevelInfo, FormatJSON)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("simulation finished", "run_id", "abc", "iterations", 1000, "cached", true)
	}
}

func BenchmarkLoggerDebugDisabled(b *testing.B) {
	logger := benchLogger(LevelInfo, FormatJSON)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Debug("scheduling task", "task", "T1", "resource", "Dev")
	}
}

func BenchmarkLoggerFormatText(b *testing.B) {
	logger := benchLogger(LevelInfo, FormatText)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("schedule built", "resource", "Dev", "rules", 3)
	}
}

func BenchmarkLoggerWithValidationError(b *testing.B) {
	logger := benchLogger(LevelInfo, FormatJSON)
	err := errors.NewValidation(errors.ErrCodeRuleTime, `time entered is not a valid time: "25:00"`, "parsing rule", "include from 25:00 to 26:00 every day").
		Rethrow("making schedule for a resource", "Dev")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.WithError(err).Error("project rejected")
	}
}

func BenchmarkLoggerParallel(b *testing.B) {
	logger := benchLogger(LevelInfo, FormatJSON)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			logger.Info("simulation run", "index", 42)
		}
	})
}
