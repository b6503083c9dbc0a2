package manager

import (
	"context"
	"encoding/json"
	"errors"
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

func TestGetCreatesDefaultRecord(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryPlayerStore()
	m := newSyncManager(t, store, nil)

	p, err := m.Get(ctx, "100", "")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultName, p.Name)
	assert.Equal(t, model.StarterBerries, p.Berries)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, "1.2.0", p.SchemaVersion)
	assert.Empty(t, p.Team)

	doc, err := store.Load(ctx, "100")
	require.NoError(t, err, "new record is persisted")
	assert.Contains(t, string(doc), `"berries":10000`)

	again, err := m.Get(ctx, "100", "")
	require.NoError(t, err)
	assert.Same(t, p, again, "records are live references")
}

func TestGetAdoptsNameHint(t *testing.T) {
	ctx := context.Background()
	m := newSyncManager(t, dao.NewMemoryPlayerStore(), nil)

	p, err := m.Get(ctx, "1", "")
	require.NoError(t, err)
	require.Equal(t, model.DefaultName, p.Name)

	p, err = m.Get(ctx, "1", "Luffy")
	require.NoError(t, err)
	assert.Equal(t, "Luffy", p.Name)

	p, err = m.Get(ctx, "1", "Buggy")
	require.NoError(t, err)
	assert.Equal(t, "Luffy", p.Name, "a real name is never replaced")
}

func TestGetAppliesAdminFloors(t *testing.T) {
	ctx := context.Background()
	m := newSyncManager(t, dao.NewMemoryPlayerStore(), &PlayerConfig{AdminIDs: []string{"7"}})

	p, err := m.Get(ctx, "7", "Garp")
	require.NoError(t, err)
	assert.Equal(t, adminCurrencyFloor, p.Berries)
	assert.Equal(t, adminCurrencyFloor, p.Clovers)
	assert.Equal(t, 100, p.Level)

	_, err = m.Update(ctx, "7", func(p *model.PlayerRecord) error {
		p.Berries = 5
		return nil
	})
	require.NoError(t, err)
	p, err = m.Get(ctx, "7", "")
	require.NoError(t, err)
	assert.Equal(t, adminCurrencyFloor, p.Berries, "floors are re-applied on every read")

	normal, err := m.Get(ctx, "8", "")
	require.NoError(t, err)
	assert.Equal(t, model.StarterBerries, normal.Berries)
}

// 管理员补齐与并发 Update 交错时，最后落盘的快照必须与内存一致
func TestGetFloorsSerializeWithUpdate(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryPlayerStore()
	m := newSyncManager(t, store, &PlayerConfig{AdminIDs: []string{"7"}})

	_, err := m.Get(ctx, "7", "Garp")
	require.NoError(t, err)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := m.Get(ctx, "7", "")
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := m.Update(ctx, "7", func(p *model.PlayerRecord) error {
				p.Berries = int64(i)
				return nil
			})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	var mem int64
	require.NoError(t, m.Read(ctx, "7", func(p *model.PlayerRecord) error {
		mem = p.Berries
		return nil
	}))
	doc, err := store.Load(ctx, "7")
	require.NoError(t, err)
	var stored model.PlayerRecord
	require.NoError(t, json.Unmarshal(doc, &stored))
	assert.Equal(t, mem, stored.Berries, "persisted snapshot matches memory")

	p, err := m.Get(ctx, "7", "")
	require.NoError(t, err)
	assert.Equal(t, adminCurrencyFloor, p.Berries)
}

func TestLoadDoesNotCreate(t *testing.T) {
	m := newSyncManager(t, dao.NewMemoryPlayerStore(), nil)

	_, err := m.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, errs.ErrPlayerNotFound)
	assert.Zero(t, m.CachedCount())

	_, err = m.Update(context.Background(), "nobody", func(*model.PlayerRecord) error { return nil })
	assert.ErrorIs(t, err, errs.ErrPlayerNotFound)
}

func TestGetMigratesLegacyDocumentOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	legacy := []byte(`{"user_id":"5","name":"Nami","berries":250,"characters":null}`)

	store.EXPECT().Load(gomock.Any(), "5").Return(legacy, nil).Times(1)
	var written []byte
	store.EXPECT().Upsert(gomock.Any(), "5", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, doc []byte) error {
			written = doc
			return nil
		}).Times(1)

	m := newSyncManager(t, store, nil)
	ctx := context.Background()

	first, err := m.Get(ctx, "5", "")
	require.NoError(t, err)
	firstCopy := first.Clone()
	second, err := m.Get(ctx, "5", "")
	require.NoError(t, err)

	assert.Equal(t, firstCopy, second.Clone())
	assert.Equal(t, int64(250), second.Berries)
	assert.Equal(t, 1, second.Level)
	assert.NotNil(t, second.Characters)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(written, &doc))
	assert.Equal(t, "1.2.0", doc["schema_version"])
	assert.Equal(t, false, doc["is_locked"])
}

func TestGetCompleteDocumentNotRewritten(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)

	p := model.NewPlayer("6", "Robin", testNow)
	p.SchemaVersion = NewMigrator().Latest()
	doc, err := json.Marshal(p)
	require.NoError(t, err)

	store.EXPECT().Load(gomock.Any(), "6").Return(doc, nil).Times(1)
	store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	m := newSyncManager(t, store, nil)
	got, err := m.Get(context.Background(), "6", "")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestGetStoreFailureDoesNotCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	store.EXPECT().Load(gomock.Any(), "9").Return(nil, errors.New("connection refused"))
	store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	m := newSyncManager(t, store, nil)
	_, err := m.Get(context.Background(), "9", "")
	require.Error(t, err)
	assert.True(t, errs.IsTransient(err))
	assert.Zero(t, m.CachedCount())
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	release := make(chan struct{})

	store.EXPECT().Load(gomock.Any(), "11").
		DoAndReturn(func(context.Context, string) ([]byte, error) {
			<-release
			return nil, dao.ErrNotFound
		}).Times(1)
	store.EXPECT().Upsert(gomock.Any(), "11", gomock.Any()).Return(nil).Times(1)

	m := newSyncManager(t, store, nil)

	const n = 8
	results := make([]*model.PlayerRecord, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := m.Get(context.Background(), "11", "")
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestPersistFailureIsLoggedNotReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	store.EXPECT().Load(gomock.Any(), "12").Return(nil, dao.ErrNotFound)
	store.EXPECT().Upsert(gomock.Any(), "12", gomock.Any()).Return(errors.New("disk full")).AnyTimes()

	l, logs := newObservedLogger(t)
	met := newTestMetrics(t)
	persister := NewSyncPersister(&PersistConfig{Attempts: 1}, store, nil, l, met)
	m := NewPlayerManager(nil, l, store, nil, persister, NewMigrator(), met)

	p, err := m.Get(context.Background(), "12", "Usopp")
	require.NoError(t, err)
	assert.Equal(t, "Usopp", p.Name)

	_, err = m.Update(context.Background(), "12", func(p *model.PlayerRecord) error {
		p.Berries += 5
		return nil
	})
	require.NoError(t, err)

	cached, ok := m.Cached("12")
	require.True(t, ok)
	assert.Equal(t, model.StarterBerries+5, cached.Berries, "memory stays authoritative")

	entries := logs.FilterMessage("failed to persist player, memory copy stays authoritative").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "12", entries[0].ContextMap()["user_id"])
	assert.Equal(t, true, entries[0].ContextMap()["transient"])
}

func TestUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryPlayerStore()
	m := newSyncManager(t, store, nil)

	p, err := m.Get(ctx, "3", "Koby")
	require.NoError(t, err)
	before, err := store.Load(ctx, "3")
	require.NoError(t, err)

	_, err = m.Update(ctx, "3", func(p *model.PlayerRecord) error {
		p.Berries = 0
		p.Fruits = append(p.Fruits, "Gum Gum Fruit")
		return errs.ErrInsufficientFunds
	})
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
	assert.Equal(t, model.StarterBerries, p.Berries)
	assert.Empty(t, p.Fruits)

	after, err := store.Load(ctx, "3")
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "nothing is saved")
}

func TestLockUnlock(t *testing.T) {
	ctx := context.Background()
	m := newSyncManager(t, dao.NewMemoryPlayerStore(), nil)
	_, err := m.Get(ctx, "4", "")
	require.NoError(t, err)

	require.NoError(t, m.Lock(ctx, "4"))
	p, _ := m.Cached("4")
	assert.True(t, p.IsLocked)

	p.VerificationActive = true
	require.NoError(t, m.Unlock(ctx, "4"))
	assert.False(t, p.IsLocked)
	assert.False(t, p.VerificationActive)
}

func TestUnlockAll(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryPlayerStore()
	m := newSyncManager(t, store, nil)

	for _, id := range []string{"1", "2", "3"} {
		_, err := m.Get(ctx, id, "")
		require.NoError(t, err)
		require.NoError(t, m.Lock(ctx, id))
	}
	m.Evict("3")

	stored, cached, err := m.UnlockAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stored)
	assert.EqualValues(t, 2, cached)

	p, err := m.Get(ctx, "3", "")
	require.NoError(t, err)
	assert.False(t, p.IsLocked)
}

func TestUnlockAllStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPlayerStore(ctrl)
	store.EXPECT().UnlockAll(gomock.Any()).Return(int64(0), errors.New("timeout"))

	m := NewPlayerManager(nil, logger.NewNoop(), store, nil, nil, NewMigrator(), newTestMetrics(t))
	_, _, err := m.UnlockAll(context.Background())
	assert.True(t, errs.IsTransient(err))
}
