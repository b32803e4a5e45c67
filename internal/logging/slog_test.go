package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout swaps osStdout for a pipe; the returned func restores it and
// returns what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	orig := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = orig
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}

func TestSetup_Destination(t *testing.T) {
	t.Run("file only", func(t *testing.T) {
		restore := captureStdout(t)
		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("Runtime clearance: hidden 1 enemy texts (total: 1).")

		stdout := restore()
		assert.Contains(t, file.String(), "Runtime clearance")
		assert.Contains(t, file.String(), "Logging initialized")
		assert.Empty(t, stdout, "the host owns stdout once a file is open")
	})

	t.Run("stdout fallback", func(t *testing.T) {
		restore := captureStdout(t)
		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("no log file")

		assert.Contains(t, restore(), "no log file")
	})
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)

			m.Logger().Debug("orphaned text")
			m.Logger().Error("sweep failed")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("orphaned text")))
			assert.Contains(t, buf.String(), "sweep failed")
		})
	}
}

func TestSetup_RFC3339UTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)
	m.Logger().Info("stamp")

	assert.Regexp(t, `time=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z level=INFO msg=stamp`, buf.String())
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var before, after bytes.Buffer
	m := NewSlogManager()

	m.Setup(&before, "info", nil)
	m.Logger().Info("first")
	m.Setup(&after, "info", nil)
	m.Logger().Info("second")

	assert.Contains(t, before.String(), "first")
	assert.NotContains(t, before.String(), "second")
	assert.Contains(t, after.String(), "second")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestSetup_OTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	var buf bytes.Buffer
	m := NewSlogManager()
	assert.NoError(t, m.Flush(context.Background()), "flush before setup is a no-op")

	m.Setup(&buf, "info", provider)
	m.Logger().Info("bridged")

	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestSetup_GELFWriter(t *testing.T) {
	var file, gelfBuf bytes.Buffer
	m := NewSlogManager()
	m.SetGELFWriter(&gelfBuf, slog.LevelInfo)
	m.Setup(&file, "info", nil)

	m.Logger().Info("to graylog", "cleared", 3)

	assert.Contains(t, file.String(), "to graylog")
	assert.Contains(t, gelfBuf.String(), `"msg":"to graylog"`)
	assert.Contains(t, gelfBuf.String(), `"cleared":3`)
}

func TestSetup_GELFWriterLevelFloor(t *testing.T) {
	var file, gelfBuf bytes.Buffer
	m := NewSlogManager()
	m.SetGELFWriter(&gelfBuf, slog.LevelWarn)
	m.Setup(&file, "debug", nil)

	m.Logger().Info("file only")
	m.Logger().Warn("both sinks")

	assert.Contains(t, file.String(), "file only")
	assert.NotContains(t, gelfBuf.String(), "file only")
	assert.Contains(t, gelfBuf.String(), "both sinks")
}

func TestSetup_ContextProviderAddsState(t *testing.T) {
	var buf bytes.Buffer
	enabled := true
	m := NewSlogManager()
	m.ContextProvider = func() []slog.Attr {
		return []slog.Attr{slog.Bool("textEnabled", enabled)}
	}
	m.Setup(&buf, "info", nil)

	m.Logger().Info("first")
	enabled = false
	m.Logger().Info("second")

	out := buf.String()
	assert.Contains(t, out, "msg=first state.textEnabled=true")
	assert.Contains(t, out, "msg=second state.textEnabled=false")
}

func TestWriteLog(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		t.Run(level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, "debug", nil)

			m.WriteLog("fnc_spawnText", level+" message", level)

			assert.Contains(t, buf.String(), level+" message")
			assert.Contains(t, buf.String(), "function=fnc_spawnText")
		})
	}

	assert.NotPanics(t, func() { NewSlogManager().WriteLog("fn", "before setup", "info") })
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"Info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("handler error")
}

func TestMultiHandler(t *testing.T) {
	t.Run("fans out and skips nil", func(t *testing.T) {
		var a, b bytes.Buffer
		multi := NewMultiHandler(nil, slog.NewTextHandler(&a, nil), nil, slog.NewTextHandler(&b, nil))
		require.Len(t, multi.handlers, 2)

		slog.New(multi).Info("fanned out")
		assert.Contains(t, a.String(), "fanned out")
		assert.Contains(t, b.String(), "fanned out")
	})

	t.Run("enabled if any sink is", func(t *testing.T) {
		ctx := context.Background()
		info := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
		debug := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

		assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelError))
		assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
		assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
	})

	t.Run("attrs and groups reach every sink", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(slog.NewTextHandler(&buf, nil))
		assert.Same(t, multi, multi.WithGroup(""))

		slog.New(multi).With("component", "sweep").WithGroup("res").Info("x", "cleared", 2)
		assert.Contains(t, buf.String(), "component=sweep res.cleared=2")
	})

	t.Run("joins sink errors", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(failingHandler{}, slog.NewTextHandler(&buf, nil))
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "should reach spy", 0)

		err := multi.Handle(context.Background(), record)
		assert.EqualError(t, err, "handler error")
		assert.Contains(t, buf.String(), "should reach spy")
	})
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	f := NewLevelFilter(inner, slog.LevelWarn)

	assert.False(t, f.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, f.Enabled(context.Background(), slog.LevelError))

	slog.New(f).With("sweep", 1).WithGroup("g").Warn("kept", "k", "v")
	assert.Contains(t, buf.String(), "sweep=1 g.k=v")
}

func TestNewGELFWriter(t *testing.T) {
	w, err := NewGELFWriter("127.0.0.1:12201", "damagetext")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.NoError(t, w.Close())

	_, err = NewGELFWriter("not-an-address", "")
	assert.Error(t, err)
}
