package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestSetup_Destination(t *testing.T) {
	t.Run("file only", func(t *testing.T) {
		restore := captureConsole(t)

		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("object added", "id", "sofa-1")

		assert.Empty(t, restore(), "console must stay quiet when a file is set")
		assert.Contains(t, file.String(), "Logging initialized")
		assert.Contains(t, file.String(), "msg=\"object added\" id=sofa-1")
	})

	t.Run("console fallback", func(t *testing.T) {
		restore := captureConsole(t)

		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("object removed")

		assert.Contains(t, restore(), "object removed")
	})

	t.Run("with otel provider", func(t *testing.T) {
		provider := sdklog.NewLoggerProvider()
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", provider)
		m.Logger().Info("undo applied")

		assert.Contains(t, file.String(), "undo applied")
		assert.NoError(t, m.Flush(context.Background()))
	})
}

func TestSetup_Level(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)
			buf.Reset()

			m.Logger().Debug("scene changed")
			m.Logger().Info("selection cleared")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("scene changed")))
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("selection cleared")))
		})
	}
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var first, second bytes.Buffer
	m := NewSlogManager()

	m.Setup(&first, "info", nil)
	m.Logger().Info("session one")
	m.Setup(&second, "info", nil)
	m.Logger().Info("session two")

	assert.Contains(t, first.String(), "session one")
	assert.NotContains(t, first.String(), "session two")
	assert.Contains(t, second.String(), "session two")
}

func TestSlogManager_BeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
}

func TestSetContextProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	count := 0
	m.SetContextProvider(func() []slog.Attr {
		count++
		return []slog.Attr{slog.Int("objects", count)}
	})

	m.Logger().Info("first")
	m.Logger().Info("second")

	assert.Contains(t, buf.String(), "msg=first objects=1")
	assert.Contains(t, buf.String(), "msg=second objects=2")
}

func TestSetContextProvider_BeforeSetup(t *testing.T) {
	m := NewSlogManager()
	m.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.String("selected", "sofa-1")}
	})

	var buf bytes.Buffer
	m.Setup(&buf, "info", nil)
	m.Logger().Info("after setup")

	assert.Contains(t, buf.String(), "selected=sofa-1")
}

func TestContextHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	h := NewContextHandler(inner, func() []slog.Attr { return []slog.Attr{slog.Bool("live", true)} })

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "scene")}))
	logger.Info("attrs")
	assert.Contains(t, buf.String(), "component=scene")
	assert.Contains(t, buf.String(), "live=true")

	assert.Equal(t, h, h.WithGroup(""))
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
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

// failingHandler accepts every record and fails to write it.
type failingHandler struct {
	slog.Handler
}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

func TestMultiHandler(t *testing.T) {
	newText := func(buf *bytes.Buffer, lvl slog.Level) slog.Handler {
		return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: lvl})
	}

	t.Run("fans out", func(t *testing.T) {
		var a, b bytes.Buffer
		slog.New(NewMultiHandler(newText(&a, slog.LevelInfo), newText(&b, slog.LevelInfo))).Info("object updated")

		assert.Contains(t, a.String(), "object updated")
		assert.Contains(t, b.String(), "object updated")
	})

	t.Run("drops nil handlers", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(nil, newText(&buf, slog.LevelInfo), nil)
		require.Len(t, multi.handlers, 1)

		slog.New(multi).Info("redo applied")
		assert.Contains(t, buf.String(), "redo applied")
	})

	t.Run("enabled if any handler is", func(t *testing.T) {
		ctx := context.Background()
		info := newText(&bytes.Buffer{}, slog.LevelInfo)
		debug := newText(&bytes.Buffer{}, slog.LevelDebug)

		assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelInfo))
		assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
		assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
	})

	t.Run("attrs and groups", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(newText(&buf, slog.LevelInfo))

		slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "catalog")})).Info("loaded")
		slog.New(multi.WithGroup("object")).Info("placed", "id", "lamp-2")

		assert.Contains(t, buf.String(), "component=catalog")
		assert.Contains(t, buf.String(), "object.id=lamp-2")
		assert.Equal(t, multi, multi.WithGroup(""))
	})

	t.Run("keeps going after an error", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(failingHandler{}, newText(&buf, slog.LevelInfo))

		slog.New(multi).Info("journal attached")
		assert.Contains(t, buf.String(), "journal attached")
	})
}

// captureConsole redirects the console writer to a pipe and returns a
// function that restores it and returns what was captured.
func captureConsole(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	orig := console
	console = w

	return func() string {
		w.Close()
		console = orig
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}
