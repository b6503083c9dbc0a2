package manager

import (
	"testing"
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/dao"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/util/conc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestMetrics(t *testing.T) *metrics.BattleMetrics {
	t.Helper()
	m, err := metrics.New(&metrics.Config{SystemCollectInterval: time.Minute})
	require.NoError(t, err)
	t.Cleanup(m.Stop)
	return m
}

func newObservedLogger(t *testing.T) (logger.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	l, err := logger.New(&logger.Config{Format: logger.JSONFormat}, logger.WithCore(core))
	require.NoError(t, err)
	return l, logs
}

func newTestPool(t *testing.T) *conc.Pool {
	t.Helper()
	p, err := conc.NewPool(8, logger.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// newSyncManager 同步持久化，写入完成后立刻可以在 store 中读到
func newSyncManager(t *testing.T, store dao.PlayerStore, cfg *PlayerConfig) *PlayerManager {
	t.Helper()
	m := newTestMetrics(t)
	p := NewSyncPersister(&PersistConfig{Attempts: 1}, store, nil, logger.NewNoop(), m)
	return NewPlayerManager(cfg, logger.NewNoop(), store, nil, p, NewMigrator(), m)
}
