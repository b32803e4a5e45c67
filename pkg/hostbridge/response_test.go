package hostbridge

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparroh/disablefloatingtext/internal/dispatcher"
	"github.com/sparroh/disablefloatingtext/internal/logging"
)

func TestFormatDispatchResponse(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		result   any
		err      error
		expected string
	}{
		{
			name:     "success with string array (VERSION)",
			command:  ":VERSION:",
			result:   []string{"0.0.1", "2026-02-01"},
			expected: `["ok", ["0.0.1","2026-02-01"]]`,
		},
		{
			name:     "success with simple string",
			command:  ":SPAWN:",
			result:   "ok",
			expected: `["ok", "ok"]`,
		},
		{
			name:     "success with path string",
			command:  ":GETDIR:",
			result:   `C:\Games\Host`,
			expected: `["ok", "C:\\Games\\Host"]`,
		},
		{
			name:     "success with nil result",
			command:  ":SOME:CMD:",
			expected: `["ok"]`,
		},
		{
			name:     "success with bool",
			command:  ":TOGGLE:",
			result:   false,
			expected: `["ok", false]`,
		},
		{
			name:     "success with handles",
			command:  ":FRAME:",
			result:   []uint64{4, 7},
			expected: `["ok", [4,7]]`,
		},
		{
			name:     "success with map",
			command:  ":STATUS:",
			result:   map[string]int{"count": 42},
			expected: `["ok", {"count":42}]`,
		},
		{
			name:     "error response",
			command:  ":LOG:",
			err:      errors.New(`bad "arg"`),
			expected: `["error", "bad \"arg\""]`,
		},
		{
			name:     "unencodable result",
			command:  ":BAD:",
			result:   make(chan int),
			expected: `["error", "encoding :BAD: result: json: unsupported type: chan int"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDispatchResponse(tt.command, tt.result, tt.err))
		})
	}
}

func withDispatcher(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()
	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)

	prev := GetDispatcher()
	SetDispatcher(d)
	t.Cleanup(func() { SetDispatcher(prev) })
	return d
}

func TestCall_NoDispatcher(t *testing.T) {
	prev := GetDispatcher()
	SetDispatcher(nil)
	t.Cleanup(func() { SetDispatcher(prev) })

	assert.Equal(t, `["error", "extension not initialized"]`, Call(":FRAME:", nil))
}

func TestCall_Routes(t *testing.T) {
	d := withDispatcher(t)
	d.Register(":ECHO:", func(e dispatcher.Event) (any, error) {
		return e.Args, nil
	})

	assert.Equal(t, `["ok", ["a","b"]]`, Call(":ECHO:", []string{"a", "b"}))
	assert.Equal(t, `["ok", null]`, Call(":ECHO:", nil))
}

func TestCall_PipeArgs(t *testing.T) {
	d := withDispatcher(t)
	d.Register(":ECHO:", func(e dispatcher.Event) (any, error) {
		return strings.Join(e.Args, ","), nil
	})

	assert.Equal(t, `["ok", "1,Bug"]`, Call(":ECHO:|1|Bug", nil))
}

func TestCall_Unknown(t *testing.T) {
	withDispatcher(t)
	assert.Equal(t, `["error", "no handler registered for :NOPE:"]`, Call(":NOPE:", nil))
}

func TestVersion(t *testing.T) {
	prev := Version()
	t.Cleanup(func() { SetVersion(prev) })

	SetVersion("1.0.0")
	assert.Equal(t, "1.0.0", Version())
}
