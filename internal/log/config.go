package log

import (
	"fmt"
	"io"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat reads "json" or "text" ("console" is an alias for text).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText:
		return f, nil
	case "console":
		return FormatText, nil
	}
	return FormatJSON, fmt.Errorf("unknown log format %q (use text or json)", s)
}

// Config describes a logger. The zero value writes info and above as JSON
// to stderr.
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer // nil means os.Stderr
	AddSource bool

	// ServiceName and ServiceVersion are attached to every record when the
	// name is set.
	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs info and above as JSON to stderr, leaving stdout to
// command output.
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		ServiceName:    "forecast",
		ServiceVersion: "dev",
	}
}

// DevelopmentConfig logs everything as text with source locations.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = LevelDebug
	cfg.Format = FormatText
	cfg.AddSource = true
	return cfg
}

// ParseConfig builds a configuration from textual level and format settings,
// as they come from flags or a configuration file.
func ParseConfig(level, format string, output io.Writer, version string) (Config, error) {
	cfg := DefaultConfig()

	var err error
	if cfg.Level, err = ParseLevel(level); err != nil {
		return Config{}, err
	}
	if cfg.Format, err = ParseFormat(format); err != nil {
		return Config{}, err
	}
	cfg.Output = output
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg, nil
}
