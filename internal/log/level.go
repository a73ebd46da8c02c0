package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the minimum severity a logger writes. Its values are slog's, so
// the zero Level is info.
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// ParseLevel reads debug, info, warn or error in any case.
func ParseLevel(s string) (Level, error) {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q (use debug, info, warn or error)", s)
}

func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// Level implements slog.Leveler.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}
