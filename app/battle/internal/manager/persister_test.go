package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/dao"
	"github.com/lk2023060901/grandline/app/battle/internal/dao/mocks"
	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAsyncPersisterKeepsLatestSnapshot(t *testing.T) {
	store := dao.NewMemoryPlayerStore()
	a := NewAsyncPersister(&PersistConfig{}, store, nil, newTestPool(t), logger.NewNoop(), newTestMetrics(t))

	p := model.NewPlayer("1", "Koby", testNow)
	for i := 1; i <= 50; i++ {
		snap := p.Clone()
		snap.Berries = int64(i)
		require.NoError(t, a.Persist(context.Background(), snap))
	}
	require.NoError(t, a.Close())

	doc, err := store.Load(context.Background(), "1")
	require.NoError(t, err)
	var got model.PlayerRecord
	require.NoError(t, json.Unmarshal(doc, &got))
	assert.Equal(t, int64(50), got.Berries)
}

func TestAsyncPersisterManyPlayers(t *testing.T) {
	store := dao.NewMemoryPlayerStore()
	a := NewAsyncPersister(&PersistConfig{RateLimit: 1000, Burst: 10}, store, nil, newTestPool(t), logger.NewNoop(), newTestMetrics(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = a.Persist(context.Background(), model.NewPlayer(fmt.Sprint(i), "", testNow))
		}(i)
	}
	wg.Wait()
	require.NoError(t, a.Close())
	assert.Equal(t, 20, store.Len())

	// 关闭后的写入被丢弃
	require.NoError(t, a.Persist(context.Background(), model.NewPlayer("late", "", testNow)))
	assert.Equal(t, 20, store.Len())
}

func TestAsyncPersisterLogsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	store.EXPECT().Upsert(gomock.Any(), "1", gomock.Any()).Return(errors.New("boom")).Times(1)

	l, logs := newObservedLogger(t)
	a := NewAsyncPersister(&PersistConfig{}, store, nil, newTestPool(t), l, newTestMetrics(t))
	require.NoError(t, a.Persist(context.Background(), model.NewPlayer("1", "", testNow)))
	require.NoError(t, a.Close())

	assert.Equal(t, 1, logs.FilterMessage("failed to persist player").Len())
}

func TestSyncPersisterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	gomock.InOrder(
		store.EXPECT().Upsert(gomock.Any(), "1", gomock.Any()).Return(errors.New("conn reset")),
		store.EXPECT().Upsert(gomock.Any(), "1", gomock.Any()).Return(errors.New("conn reset")),
		store.EXPECT().Upsert(gomock.Any(), "1", gomock.Any()).Return(nil),
	)

	s := NewSyncPersister(&PersistConfig{Attempts: 3, Backoff: time.Millisecond}, store, nil, logger.NewNoop(), newTestMetrics(t))
	assert.NoError(t, s.Persist(context.Background(), model.NewPlayer("1", "", testNow)))
}

func TestSyncPersisterGivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	store.EXPECT().Upsert(gomock.Any(), "1", gomock.Any()).Return(errors.New("conn reset")).Times(2)

	s := NewSyncPersister(&PersistConfig{Attempts: 2, Backoff: time.Millisecond}, store, nil, logger.NewNoop(), newTestMetrics(t))
	err := s.Persist(context.Background(), model.NewPlayer("1", "", testNow))
	require.Error(t, err)
	assert.True(t, errs.IsTransient(err))
}

func TestNewPersisterSelectsMode(t *testing.T) {
	store := dao.NewMemoryPlayerStore()
	m := newTestMetrics(t)

	_, ok := NewPersister(&PersistConfig{Mode: PersistSync}, store, nil, nil, logger.NewNoop(), m).(*SyncPersister)
	assert.True(t, ok)
	_, ok = NewPersister(DefaultPersistConfig(), store, nil, newTestPool(t), logger.NewNoop(), m).(*AsyncPersister)
	assert.True(t, ok)
}
