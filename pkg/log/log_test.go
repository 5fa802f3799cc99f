package log

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want slog.Level
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "DEBUG", want: slog.LevelDebug},
		{name: "warn", want: slog.LevelWarn},
		{name: "warning", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "info", want: slog.LevelInfo},
		{name: " info ", want: slog.LevelInfo},
		{name: "", want: slog.LevelInfo},
		{name: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level "+tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, parseLevel(tt.name))
		})
	}
}
