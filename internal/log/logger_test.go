package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{env: "debug", want: slog.LevelDebug},
		{env: "DEBUG", want: slog.LevelDebug},
		{env: "warn", want: slog.LevelWarn},
		{env: "warning", want: slog.LevelWarn},
		{env: "error", want: slog.LevelError},
		{env: "", want: slog.LevelInfo},
		{env: "nonsense", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("LOG_LEVEL="+tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentWorker,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.Info("processing batch", "count", 3)
	line := buf.String()
	if !strings.Contains(line, "component=worker") {
		t.Errorf("missing component field: %s", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Errorf("missing caller field: %s", line)
	}

	buf.Reset()
	logger.WithComponent(ComponentSheets).Warn("append failed")
	if line := buf.String(); !strings.Contains(line, "component=sheets") {
		t.Errorf("WithComponent not applied: %s", line)
	}
}
