package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*AscendLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = buf
	cfg.AddSource = false
	return NewLogger(cfg), buf
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelWarn)

	logger.Info("should be dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("should be kept")
	assert.NotZero(t, buf.Len())
}

func TestContextAttrs(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.WithComponent("agent").WithStudent("s-1").WithContext("attempt", 2).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "agent", entry["component"])
	assert.Equal(t, "s-1", entry["student_id"])
	assert.Equal(t, float64(2), entry["attempt"])
}

func TestKeyValueArgsBecomeAttrs(t *testing.T) {
	// Both built-in Logger implementations share the slog key/value
	// convention for variadic args: the message stays verbatim and the
	// pairs surface as attributes.
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.Info("Agent initialized", "agent", "Planner", "provider", "gemini", "max_retries", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Agent initialized", entry["msg"])
	assert.Equal(t, "Planner", entry["agent"])
	assert.Equal(t, "gemini", entry["provider"])
	assert.Equal(t, float64(3), entry["max_retries"])
}

func TestSlogAdapterKeyValueArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlogAdapter(slog.New(slog.NewJSONHandler(buf, nil)))

	logger.Warn("Agent error, retrying", "agent", "Advisor", "attempt", 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Agent error, retrying", entry["msg"])
	assert.Equal(t, "Advisor", entry["agent"])
	assert.Equal(t, float64(1), entry["attempt"])
}

func TestLogModelCallFailure(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.LogModelCall("gemini-2.0-flash-lite", 3, 120*time.Millisecond, false, errors.New("deadline exceeded"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Model call failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, float64(3), entry["attempt"])
	assert.Equal(t, "deadline exceeded", entry["error"])
}

func TestLogRetryIsWarn(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.LogRetry("Planner", 1, errors.New("timeout"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Planner", entry["agent"])
}

func TestNoOpLoggerSatisfiesInterface(t *testing.T) {
	var logger Logger = NoOpLogger{}
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("whatever"))
}
