package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestNewGologLogger(t *testing.T) {
	logger := NewGologLogger(golog.New())

	assert.NotNil(t, logger)
	assert.Equal(t, LogLevelInfo, logger.GetLevel())
}

func TestGologLogger_LevelControl(t *testing.T) {
	logger := NewGologLogger(golog.New())

	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())

	logger.SetLevel(LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())

	logger.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, logger.GetLevel())
}

func TestGologLogger_FormatsMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, LogLevelDebug)

	logger.Debug("visiting node %s", "greet")
	logger.Info("indexed %d chunks", 3)

	out := buf.String()
	assert.Contains(t, out, "visiting node greet")
	assert.Contains(t, out, "indexed 3 chunks")
	assert.Contains(t, out, prefix)
}

func TestGologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, LogLevelError)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.NotContains(t, out, "warn line")
	assert.Contains(t, out, "error line")
}

func TestGologLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, LogLevelNone)

	logger.Error("nothing")
	assert.Empty(t, buf.String())
}
