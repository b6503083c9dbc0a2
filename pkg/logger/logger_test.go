package logger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T, level zapcore.Level, opts ...Option) (*BaseLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(level)
	l, err := New(&Config{Format: JSONFormat}, append([]Option{WithCore(core)}, opts...)...)
	require.NoError(t, err)
	return l, logs
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config uses default", config: nil},
		{name: "json console", config: &Config{Level: DebugLevel, Format: JSONFormat}},
		{
			name:    "file without path",
			config:  &Config{EnableFile: true},
			wantErr: ErrInvalidOutputPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	dir := t.TempDir()
	for _, rt := range []RotationType{RotationBySize, RotationByTime} {
		l, err := New(&Config{
			EnableFile: true,
			OutputPath: filepath.Join(dir, string(rt)+".log"),
			Rotation:   RotationConfig{Type: rt},
		})
		require.NoError(t, err, rt)
		l.Info("written to file")
		_ = l.Sync()
	}
}

func TestKeyValueFields(t *testing.T) {
	l, logs := newObserved(t, zapcore.DebugLevel)

	l.Info("player saved", "player_id", "42", "berries", int64(500))
	l.Warn("store write failed", "error", errors.New("boom"))
	l.Debug("odd", "dangling")

	entries := logs.All()
	require.Len(t, entries, 3)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "42", ctx["player_id"])
	assert.Equal(t, int64(500), ctx["berries"])

	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, "dangling", entries[2].ContextMap()["!BADKEY"])
}

func TestNamedAndWithFields(t *testing.T) {
	l, logs := newObserved(t, zapcore.InfoLevel)

	child := l.Named("manager").Named("player").WithFields("component", "store")
	child.Info("hello")
	l.Debug("filtered by level")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "manager.player", entries[0].LoggerName)
	assert.Equal(t, "store", entries[0].ContextMap()["component"])
}

func TestContextFields(t *testing.T) {
	l, logs := newObserved(t, zapcore.InfoLevel)

	ctx := ContextWithFields(context.Background(), "session_id", "1_2")
	ctx = ContextWithFields(ctx, "player_id", "1")
	l.InfoContext(ctx, "move applied", "move", "Strike")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "1_2", fields["session_id"])
	assert.Equal(t, "1", fields["player_id"])
	assert.Equal(t, "Strike", fields["move"])
}

func TestHooks(t *testing.T) {
	var forwarded []string
	drop := HookFunc(func(entry zapcore.Entry, _ []zapcore.Field) bool {
		return entry.Message != "secret"
	})
	forward := MinLevelHook(ErrorLevel, func(entry zapcore.Entry, fields []zapcore.Field) {
		forwarded = append(forwarded, entry.Message)
		assert.Equal(t, "7", FieldsToMap(fields)["player_id"])
	})

	l, logs := newObserved(t, zapcore.DebugLevel, WithHooks(drop, forward))
	l.Info("secret")
	l.Info("visible")
	l.Error("persist failed", "player_id", "7")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, []string{"persist failed"}, forwarded)
}

func TestNoopAndDefault(t *testing.T) {
	var l Logger = NewNoop()
	l.Info("ignored")
	assert.Same(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())

	assert.NotNil(t, Default())
	assert.Same(t, l, OrDefault(l))
	assert.NotNil(t, OrDefault(nil))
}
