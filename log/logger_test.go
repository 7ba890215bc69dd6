package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LogLevelWarn)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("careful: %d", 1)
	logger.Error("broken: %s", "x")

	out := buf.String()
	assert.NotContains(t, out, "[DEBUG]")
	assert.NotContains(t, out, "[INFO]")
	assert.Contains(t, out, "[WARN] careful: 1")
	assert.Contains(t, out, "[ERROR] broken: x")
	assert.Contains(t, out, "[langgraphlab] ")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"off", LogLevelNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "NONE", LogLevelNone.String())
	assert.Equal(t, "UNKNOWN(9)", LogLevel(9).String())
}

func TestDefaultLoggerSwap(t *testing.T) {
	prev := GetDefaultLogger()
	defer SetDefaultLogger(prev)

	var buf bytes.Buffer
	SetDefaultLogger(NewCustomLogger(&buf, LogLevelDebug))
	Info("hello %s", "world")
	assert.Contains(t, buf.String(), "hello world")

	SetDefaultLogger(nil)
	assert.IsType(t, &NoOpLogger{}, GetDefaultLogger())
}
