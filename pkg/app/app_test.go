package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAppLifecycle(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	started := make(chan struct{})
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithName("test"), WithStopTimeout(time.Second))
	InitApp(a, Components{
		Servers: []Server{ServerFuncs{
			StartFn: func() error { record("start"); close(started); return nil },
			StopFn:  func() error { record("stop"); return nil },
		}},
		Closers: []Closer{
			CloserFunc(func() error { record("close-1"); return nil }),
			CloserFunc(func() error { record("close-2"); return errors.New("ignored") }),
		},
	})

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	<-started
	assert.ErrorIs(t, a.Run(), ErrAppAlreadyRunning)
	a.Stop()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, []string{"start", "stop", "close-2", "close-1"}, order)
	assert.NoError(t, a.Shutdown(), "second shutdown is a no-op")
}

func TestBaseAppStartFailure(t *testing.T) {
	closed := false
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	a.AppendServer(ServerFuncs{StartFn: func() error { return errors.New("port in use") }})
	a.AppendCloser(CloserFunc(func() error { closed = true; return nil }))

	err := a.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port in use")
	assert.True(t, closed)
}

type testConfig struct {
	Log struct {
		Level      string `mapstructure:"level"`
		OutputPath string `mapstructure:"output_path"`
	} `mapstructure:"log"`
	Battle struct {
		TurnTimeout time.Duration `mapstructure:"turn_timeout"`
	} `mapstructure:"battle"`
}

func TestLoadConfigFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nbattle:\n  turn_timeout: 90s\n"), 0o644))
	t.Setenv("GRANDLINE_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var cfg testConfig
	require.NoError(t, LoadConfigFrom(fs, []string{"-c", path, "--log.path", filepath.Join(dir, "logs", "x.log")}, &cfg))

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 90*time.Second, cfg.Battle.TurnTimeout)
	assert.Equal(t, filepath.Join(dir, "logs", "x.log"), cfg.Log.OutputPath)
	assert.Equal(t, path, GetConfigPath())
	assert.DirExists(t, filepath.Join(dir, "logs"))
}
