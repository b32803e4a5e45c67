package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedDispatcherLogger(level zerolog.Level) (*DispatcherLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(level)
	return NewDispatcherLogger(logger), &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestDispatcherLogger_Debug(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.DebugLevel)

	dl.Debug("handling event", "command", ":FRAME:", "args", 0)

	entry := decode(t, buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "handling event", entry["message"])
	assert.Equal(t, ":FRAME:", entry["command"])
	assert.Equal(t, float64(0), entry["args"])
}

func TestDispatcherLogger_Info(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.InfoLevel)

	dl.Info("toggle flipped", "enabled", false)

	entry := decode(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, false, entry["enabled"])
}

func TestDispatcherLogger_Warn(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.InfoLevel)

	dl.Warn("queue full", "command", ":SPAWN:")

	entry := decode(t, buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, ":SPAWN:", entry["command"])
}

func TestDispatcherLogger_Error(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.ErrorLevel)

	dl.Error("event failed", "code", 500, "reason", "internal")

	entry := decode(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, float64(500), entry["code"])
	assert.Equal(t, "internal", entry["reason"])
}

func TestDispatcherLogger_LevelFilters(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.InfoLevel)
	dl.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestDispatcherLogger_Component(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.InfoLevel)
	dl.Info("registered")
	assert.Equal(t, "dispatcher", decode(t, buf)["component"])
}

func TestDispatcherLogger_ErrorValue(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.InfoLevel)
	dl.Error("handler failed", "command", ":SPAWN:", "error", errors.New("bad handle"))

	entry := decode(t, buf)
	assert.Equal(t, "bad handle", entry["error"])
}

func TestDispatcherLogger_BadPairs(t *testing.T) {
	dl, buf := newBufferedDispatcherLogger(zerolog.InfoLevel)
	dl.Info("odd", "a", 1, 2, "b", "dangling")

	entry := decode(t, buf)
	assert.Equal(t, float64(1), entry["a"])
	assert.Equal(t, "b", entry["2"])
	assert.Equal(t, "dangling", entry[badKey])
}
