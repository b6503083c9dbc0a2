package manager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/dao"
	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/util/keylock"
	"golang.org/x/sync/singleflight"
)

// 管理员每次读取都会被抬到的下限
const (
	adminCurrencyFloor int64 = 99999999
	adminLevel               = 100
)

// PlayerConfig 玩家管理配置
type PlayerConfig struct {
	// AdminIDs 管理员 ID
	AdminIDs []string `mapstructure:"admin_ids" json:"admin_ids" yaml:"admin_ids"`
	// LockStripes 玩家锁分段数
	LockStripes int `mapstructure:"lock_stripes" json:"lock_stripes" yaml:"lock_stripes"`
}

// PlayerManager 玩家存档管理器，三级存储：内存 -> Redis -> 持久层
// 内存中的记录是权威数据，返回的都是活引用
type PlayerManager struct {
	logger    logger.Logger
	store     dao.PlayerStore
	cacheDAO  *dao.CacheDAO
	persister Persister
	migrator  *Migrator
	metrics   *metrics.BattleMetrics

	// 内存缓存（第一级）
	mu      sync.RWMutex
	players map[string]*model.PlayerRecord

	locks  *keylock.Striped
	group  singleflight.Group
	admins map[string]struct{}
	now    func() time.Time
}

// NewPlayerManager 创建玩家管理器，cacheDAO 可以为 nil
func NewPlayerManager(
	cfg *PlayerConfig,
	l logger.Logger,
	store dao.PlayerStore,
	cacheDAO *dao.CacheDAO,
	persister Persister,
	migrator *Migrator,
	m *metrics.BattleMetrics,
) *PlayerManager {
	if cfg == nil {
		cfg = &PlayerConfig{}
	}
	stripes := cfg.LockStripes
	if stripes <= 0 {
		stripes = 256
	}
	admins := make(map[string]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}
	return &PlayerManager{
		logger:    logger.OrDefault(l).Named("manager.player"),
		store:     store,
		cacheDAO:  cacheDAO,
		persister: persister,
		migrator:  migrator,
		metrics:   m,
		players:   make(map[string]*model.PlayerRecord),
		locks:     keylock.New(stripes),
		admins:    admins,
		now:       time.Now,
	}
}

// Get 获取玩家，不存在时创建默认存档
// nameHint 在玩家还没有名字（或是占位名）时被采用
func (m *PlayerManager) Get(ctx context.Context, userID, nameHint string) (*model.PlayerRecord, error) {
	p, err := m.fetch(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	// 补齐与落盘在同一把键锁内，避免与 Update 交错后写回旧快照
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)
	if m.normalize(p, nameHint) {
		m.Save(ctx, p)
	}
	return p, nil
}

// Load 获取已注册的玩家，不会创建
func (m *PlayerManager) Load(ctx context.Context, userID string) (*model.PlayerRecord, error) {
	p, err := m.fetch(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	// 补齐与落盘在同一把键锁内，避免与 Update 交错后写回旧快照
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)
	if m.normalize(p, "") {
		m.Save(ctx, p)
	}
	return p, nil
}

// Save 同步更新内存，再把快照交给 Persister；持久化失败只记录日志
func (m *PlayerManager) Save(ctx context.Context, p *model.PlayerRecord) {
	m.mu.Lock()
	m.players[p.UserID] = p
	m.mu.Unlock()

	m.persist(ctx, p.Clone())
}

// persist 提交一份已脱离共享记录的快照
func (m *PlayerManager) persist(ctx context.Context, snapshot *model.PlayerRecord) {
	if err := m.persister.Persist(ctx, snapshot); err != nil {
		m.logger.Error("failed to persist player, memory copy stays authoritative",
			"user_id", snapshot.UserID,
			"transient", errs.IsTransient(err),
			"error", err,
		)
	}
}

// Update 在玩家锁内执行读-改-写；fn 返回错误时记录恢复原样且不保存
// fn 内不要再调用 Update 或 Get
func (m *PlayerManager) Update(ctx context.Context, userID string, fn func(*model.PlayerRecord) error) (*model.PlayerRecord, error) {
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	p, err := m.fetch(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	m.normalize(p, "")

	backup := p.Clone()
	if err := fn(p); err != nil {
		*p = *backup
		return nil, err
	}
	m.Save(ctx, p)
	return p, nil
}

// Read 在玩家锁内只读访问，不保存
func (m *PlayerManager) Read(ctx context.Context, userID string, fn func(*model.PlayerRecord) error) error {
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	p, err := m.fetch(ctx, userID, false)
	if err != nil {
		return err
	}
	return fn(p)
}

// Lock 锁定玩家
func (m *PlayerManager) Lock(ctx context.Context, userID string) error {
	_, err := m.Update(ctx, userID, func(p *model.PlayerRecord) error {
		p.IsLocked = true
		return nil
	})
	if err == nil {
		m.logger.Info("player locked", "user_id", userID)
	}
	return err
}

// Unlock 解锁玩家并清除验证状态
func (m *PlayerManager) Unlock(ctx context.Context, userID string) error {
	_, err := m.Update(ctx, userID, func(p *model.PlayerRecord) error {
		p.IsLocked = false
		p.VerificationActive = false
		p.LastInteraction = 0
		return nil
	})
	if err == nil {
		m.logger.Info("player unlocked", "user_id", userID)
	}
	return err
}

// UnlockAll 解锁持久层和内存中的所有玩家
func (m *PlayerManager) UnlockAll(ctx context.Context) (stored, cached int64, err error) {
	stored, err = m.store.UnlockAll(ctx)
	if err != nil {
		return 0, 0, errs.Transient(err, "failed to unlock stored players")
	}

	m.mu.RLock()
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.locks.Lock(id)
		m.mu.RLock()
		p, ok := m.players[id]
		m.mu.RUnlock()
		if ok && (p.IsLocked || p.VerificationActive) {
			p.IsLocked = false
			p.VerificationActive = false
			m.Save(ctx, p)
			cached++
		}
		m.locks.Unlock(id)
	}

	m.logger.Info("all players unlocked", "stored", stored, "cached", cached)
	return stored, cached, nil
}

// Evict 从内存中移除（不影响持久数据）
func (m *PlayerManager) Evict(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.players, userID)
	m.logger.Debug("player evicted", "user_id", userID)
}

// Cached 内存中的玩家（不触发加载）
func (m *PlayerManager) Cached(userID string) (*model.PlayerRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[userID]
	return p, ok
}

// CachedCount 内存中的玩家数量
func (m *PlayerManager) CachedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.players)
}

// IsAdmin 是否管理员
func (m *PlayerManager) IsAdmin(userID string) bool {
	_, ok := m.admins[userID]
	return ok
}

// fetch 内存 -> Redis -> 持久层，同一玩家的并发未命中合并为一次加载
func (m *PlayerManager) fetch(ctx context.Context, userID string, create bool) (*model.PlayerRecord, error) {
	if p, ok := m.Cached(userID); ok {
		m.metrics.RecordCacheHit("memory")
		return p, nil
	}
	m.metrics.RecordCacheMiss("memory")

	key := "load:" + userID
	if create {
		key = "get:" + userID
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		if p, ok := m.Cached(userID); ok {
			return p, nil
		}
		return m.loadOrCreate(ctx, userID, create)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PlayerRecord), nil
}

func (m *PlayerManager) loadOrCreate(ctx context.Context, userID string, create bool) (*model.PlayerRecord, error) {
	// 1. Redis
	if m.cacheDAO != nil {
		p, err := m.cacheDAO.GetPlayer(ctx, userID)
		if err != nil {
			m.logger.Warn("failed to get player from redis",
				"user_id", userID,
				"error", err,
			)
		}
		if p != nil {
			return m.adopt(p), nil
		}
	}

	// 2. 持久层
	doc, err := m.store.Load(ctx, userID)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		if !create {
			return nil, errs.ErrPlayerNotFound
		}
		p := model.NewPlayer(userID, "", m.now())
		p.SchemaVersion = m.migrator.Latest()
		// 快照须在发布前取得，发布后记录可能已被其他请求修改
		snapshot := p.Clone()
		cur := m.adopt(p)
		if cur != p {
			return cur, nil
		}
		m.persist(ctx, snapshot)
		m.logger.Info("player created", "user_id", userID)
		return p, nil
	case err != nil:
		return nil, errs.Transient(err, "failed to load player")
	}

	p, migrated, err := m.decode(doc)
	if err != nil {
		return nil, err
	}
	snapshot := p.Clone()
	cur := m.adopt(p)
	if cur != p {
		return cur, nil
	}

	if migrated {
		m.logger.Info("player document migrated",
			"user_id", userID,
			"schema_version", p.SchemaVersion,
		)
		m.persist(ctx, snapshot)
	} else if m.cacheDAO != nil {
		go func() {
			if err := m.cacheDAO.SetPlayer(context.Background(), snapshot); err != nil {
				m.logger.Warn("failed to cache player to redis",
					"user_id", userID,
					"error", err,
				)
			}
		}()
	}
	return p, nil
}

// adopt 放入内存缓存；已有记录时返回已有的那份
func (m *PlayerManager) adopt(p *model.PlayerRecord) *model.PlayerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.players[p.UserID]; ok {
		return cur
	}
	m.players[p.UserID] = p
	return p
}

// decode 迁移原始文档后解码
func (m *PlayerManager) decode(doc []byte) (*model.PlayerRecord, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, false, fmt.Errorf("failed to decode player document: %w", err)
	}

	migrated := m.migrator.Migrate(raw, m.now())
	if migrated {
		var err error
		if doc, err = json.Marshal(raw); err != nil {
			return nil, false, fmt.Errorf("failed to encode migrated player: %w", err)
		}
	}

	var p model.PlayerRecord
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	// 旧文档中的 null 列表统一为空列表
	return p.Clone(), migrated, nil
}

// normalize 采用名字提示并抬高管理员下限，返回是否有修改
func (m *PlayerManager) normalize(p *model.PlayerRecord, nameHint string) bool {
	changed := false
	if nameHint != "" && nameHint != p.Name && (p.Name == "" || p.Name == model.DefaultName) {
		p.Name = nameHint
		changed = true
	}
	if m.IsAdmin(p.UserID) {
		if p.Berries < adminCurrencyFloor {
			p.Berries = adminCurrencyFloor
			changed = true
		}
		if p.Clovers < adminCurrencyFloor {
			p.Clovers = adminCurrencyFloor
			changed = true
		}
		if p.Level != adminLevel {
			p.Level = adminLevel
			changed = true
		}
	}
	return changed
}
