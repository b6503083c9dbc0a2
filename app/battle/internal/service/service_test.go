package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/dao"
	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/app/battle/internal/progression"
	"github.com/lk2023060901/grandline/app/battle/internal/timer"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/stretchr/testify/require"
)

// scriptedRand 按顺序返回预设值，用完后 Float64 返回 0.99、IntN 返回 0
type scriptedRand struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return min(v, n-1)
}

type recordingScheduler struct {
	mu       sync.Mutex
	payloads []timer.Payload
}

func (s *recordingScheduler) ScheduleOnce(_ time.Duration, p timer.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, p)
}

func (s *recordingScheduler) last() timer.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payloads[len(s.payloads)-1]
}

type testEnv struct {
	ctx        context.Context
	tables     *gameconfig.Store
	players    *manager.PlayerManager
	battles    *manager.BattleManager
	encounters *manager.EncounterTracker
	metrics    *metrics.BattleMetrics
	rng        *scriptedRand
	sched      *recordingScheduler

	battle  *BattleService
	explore *EncounterService
	player  *PlayerService
}

type envOptions struct {
	tables    *gameconfig.Tables
	encounter *manager.EncounterConfig
	admins    []string
}

type envOption func(*envOptions)

func withTables(t *gameconfig.Tables) envOption {
	return func(o *envOptions) { o.tables = t }
}

func withEncounterConfig(cfg *manager.EncounterConfig) envOption {
	return func(o *envOptions) { o.encounter = cfg }
}

func withAdmins(ids ...string) envOption {
	return func(o *envOptions) { o.admins = ids }
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	o := &envOptions{tables: gameconfig.Default()}
	for _, opt := range opts {
		opt(o)
	}

	m, err := metrics.New(&metrics.Config{SystemCollectInterval: time.Minute})
	require.NoError(t, err)
	t.Cleanup(m.Stop)

	store := dao.NewMemoryPlayerStore()
	persister := manager.NewSyncPersister(&manager.PersistConfig{Attempts: 1}, store, nil, logger.NewNoop(), m)
	players := manager.NewPlayerManager(&manager.PlayerConfig{AdminIDs: o.admins}, logger.NewNoop(),
		store, nil, persister, manager.NewMigrator(), m)

	encounters := manager.NewEncounterTracker(o.encounter)
	t.Cleanup(func() { _ = encounters.Close() })

	e := &testEnv{
		ctx:        context.Background(),
		tables:     gameconfig.NewStaticStore(o.tables),
		players:    players,
		battles:    manager.NewBattleManager(logger.NewNoop()),
		encounters: encounters,
		metrics:    m,
		rng:        &scriptedRand{},
		sched:      &recordingScheduler{},
	}
	e.battle = NewBattleService(nil, logger.NewNoop(), e.players, e.battles, e.encounters, e.tables, e.sched, e.rng, m)
	e.battle.now = stepClock()
	e.explore = NewEncounterService(logger.NewNoop(), e.players, e.encounters, e.battle, e.tables, e.rng, m)
	e.player = NewPlayerService(logger.NewNoop(), e.players, e.encounters, e.battle, e.tables)
	return e
}

// stepClock 每次调用前进一秒
func stepClock() func() time.Time {
	var mu sync.Mutex
	cur := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

// seed 注册玩家并按顺序把角色加入队伍，返回角色实例 ID
func (e *testEnv) seed(t *testing.T, id string, mutate func(*model.PlayerRecord), team ...string) []string {
	t.Helper()
	_, err := e.players.Get(e.ctx, id, id)
	require.NoError(t, err)

	var ids []string
	_, err = e.players.Update(e.ctx, id, func(p *model.PlayerRecord) error {
		for _, name := range team {
			c := progression.NewInstance(e.tables.Tables(), name, 1, "", "")
			p.Characters = append(p.Characters, c)
			p.Team = append(p.Team, c.ID)
			ids = append(ids, c.ID)
		}
		if mutate != nil {
			mutate(p)
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func (e *testEnv) record(t *testing.T, id string) *model.PlayerRecord {
	t.Helper()
	var cp *model.PlayerRecord
	require.NoError(t, e.players.Read(e.ctx, id, func(p *model.PlayerRecord) error {
		cp = p.Clone()
		return nil
	}))
	return cp
}

// glassTables 追加一个 10 HP 的角色，一击即倒
func glassTables() *gameconfig.Tables {
	t := gameconfig.Default()
	t.Characters["Glass"] = gameconfig.Character{
		Name: "Glass", HP: 10, AtkMin: 1, AtkMax: 1, Def: 0, Spe: 1,
		Moves: []string{"Strike"}, Ult: "Special Beam",
	}
	return t
}
