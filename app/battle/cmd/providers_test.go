package main

import (
	"path/filepath"
	"testing"

	"github.com/lk2023060901/grandline/app/battle/internal/dao"
	"github.com/lk2023060901/grandline/pkg/database/sqlite"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidePlayerStoreByDriver(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: StoreDriverMemory}}
	store, err := providePlayerStore(cfg, nil, logger.NewNoop(), nil)
	require.NoError(t, err)
	assert.IsType(t, &dao.MemoryPlayerStore{}, store)

	cfg = &Config{
		Store:  StoreConfig{Driver: StoreDriverSQLite},
		SQLite: sqlite.Config{Path: filepath.Join(t.TempDir(), "battle.db")},
	}
	store, err = providePlayerStore(cfg, nil, logger.NewNoop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.IsType(t, &dao.SQLitePlayerStore{}, store)

	_, err = providePlayerStore(&Config{Store: StoreConfig{Driver: "mongo"}}, nil, logger.NewNoop(), nil)
	assert.Error(t, err)
}

func TestOptionalRedisComponents(t *testing.T) {
	cfg := &Config{}

	rdb, err := provideRedis(cfg)
	require.NoError(t, err)
	assert.Nil(t, rdb)

	cache, err := provideCacheDAO(cfg, rdb, logger.NewNoop(), nil)
	require.NoError(t, err)
	assert.Nil(t, cache)

	pg, err := providePostgres(cfg)
	require.NoError(t, err)
	assert.Nil(t, pg)
}
