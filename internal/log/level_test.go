package log

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "trace", "fatal"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseLevel(bad)
			assert.Error(t, err)
		})
	}
}

func TestLevelMatchesSlog(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.Level())
	assert.Equal(t, slog.LevelError, LevelError.Level())
	assert.Equal(t, LevelInfo, Level(0), "the zero level is info")

	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
}
