package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/dao"
	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/util/conc"
	"github.com/lk2023060901/grandline/pkg/util/keylock"
	"golang.org/x/time/rate"
)

// 持久化模式
const (
	PersistAsync = "async"
	PersistSync  = "sync"
)

// PersistConfig 持久化配置
type PersistConfig struct {
	// Mode async 尽力写入；sync 同步写入并重试
	Mode string `mapstructure:"mode" json:"mode" yaml:"mode" validate:"omitempty,oneof=async sync"`
	// RateLimit async 模式每秒最多写入次数，0 表示不限
	RateLimit float64 `mapstructure:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" json:"burst" yaml:"burst"`
	// Attempts sync 模式最多尝试次数
	Attempts int           `mapstructure:"attempts" json:"attempts" yaml:"attempts"`
	Backoff  time.Duration `mapstructure:"backoff" json:"backoff" yaml:"backoff"`
	// Timeout 单次写入超时
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// DefaultPersistConfig 返回默认配置
func DefaultPersistConfig() *PersistConfig {
	return &PersistConfig{
		Mode:      PersistAsync,
		RateLimit: 200,
		Burst:     50,
		Attempts:  3,
		Backoff:   100 * time.Millisecond,
		Timeout:   5 * time.Second,
	}
}

// Persister 把玩家快照写入持久层
// 传入的记录是调用方的私有副本，实现可以异步持有
type Persister interface {
	Persist(ctx context.Context, p *model.PlayerRecord) error
	Close() error
}

// writer 两种模式共用的写入逻辑：先写 Redis 快照，再写持久文档
type writer struct {
	store   dao.PlayerStore
	cache   *dao.CacheDAO
	logger  logger.Logger
	timeout time.Duration
}

func (w *writer) write(ctx context.Context, p *model.PlayerRecord) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if w.cache != nil {
		if err := w.cache.SetPlayer(ctx, p); err != nil {
			w.logger.Warn("failed to update player cache",
				"user_id", p.UserID,
				"error", err,
			)
		}
	}

	if err := w.store.Upsert(ctx, p.UserID, doc); err != nil {
		return errs.Transient(err, "failed to persist player")
	}
	return nil
}

// AsyncPersister 尽力写入：在协程池中异步执行，失败只记录不重试
// 同一玩家的写入按提交顺序合并，只落最新的快照
type AsyncPersister struct {
	writer
	pool    *conc.Pool
	limiter *rate.Limiter
	metrics *metrics.BattleMetrics
	locks   *keylock.Striped

	mu      sync.Mutex
	pending map[string]*model.PlayerRecord
	closed  bool
	wg      sync.WaitGroup
}

// NewAsyncPersister 创建异步持久化器，cache 可以为 nil
func NewAsyncPersister(cfg *PersistConfig, store dao.PlayerStore, cache *dao.CacheDAO, pool *conc.Pool, l logger.Logger, m *metrics.BattleMetrics) *AsyncPersister {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &AsyncPersister{
		writer: writer{
			store:   store,
			cache:   cache,
			logger:  logger.OrDefault(l).Named("manager.persist"),
			timeout: cfg.Timeout,
		},
		pool:    pool,
		limiter: rate.NewLimiter(limit, burst),
		metrics: m,
		locks:   keylock.New(64),
		pending: make(map[string]*model.PlayerRecord),
	}
}

// Persist 登记快照并异步写入，总是返回 nil
func (a *AsyncPersister) Persist(_ context.Context, p *model.PlayerRecord) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Warn("persister closed, dropping player write", "user_id", p.UserID)
		a.metrics.RecordPersist(PersistAsync, false)
		return nil
	}
	_, queued := a.pending[p.UserID]
	a.pending[p.UserID] = p
	if queued {
		a.mu.Unlock()
		return nil
	}
	a.wg.Add(1)
	a.mu.Unlock()

	a.pool.Go(func() {
		defer a.wg.Done()
		a.flush(p.UserID)
	})
	return nil
}

func (a *AsyncPersister) flush(userID string) {
	a.locks.Lock(userID)
	defer a.locks.Unlock(userID)

	a.mu.Lock()
	p, ok := a.pending[userID]
	delete(a.pending, userID)
	a.mu.Unlock()
	if !ok {
		return
	}

	ctx := context.Background()
	if err := a.limiter.Wait(ctx); err != nil {
		a.logger.Warn("persist rate limiter failed", "user_id", userID, "error", err)
	}
	if err := a.write(ctx, p); err != nil {
		a.metrics.RecordPersist(PersistAsync, false)
		a.logger.Error("failed to persist player",
			"user_id", userID,
			"error", err,
		)
		return
	}
	a.metrics.RecordPersist(PersistAsync, true)
}

// Close 拒绝新的写入并等待已提交的写入完成
func (a *AsyncPersister) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.wg.Wait()
	return nil
}

// SyncPersister 保证写入：同步执行并按退避重试，最终失败返回错误
type SyncPersister struct {
	writer
	attempts int
	backoff  time.Duration
	metrics  *metrics.BattleMetrics
}

// NewSyncPersister 创建同步持久化器，cache 可以为 nil
func NewSyncPersister(cfg *PersistConfig, store dao.PlayerStore, cache *dao.CacheDAO, l logger.Logger, m *metrics.BattleMetrics) *SyncPersister {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	return &SyncPersister{
		writer: writer{
			store:   store,
			cache:   cache,
			logger:  logger.OrDefault(l).Named("manager.persist"),
			timeout: cfg.Timeout,
		},
		attempts: attempts,
		backoff:  cfg.Backoff,
		metrics:  m,
	}
}

func (s *SyncPersister) Persist(ctx context.Context, p *model.PlayerRecord) error {
	var err error
	delay := s.backoff
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err = s.write(ctx, p); err == nil {
			s.metrics.RecordPersist(PersistSync, true)
			return nil
		}
		if attempt == s.attempts {
			break
		}
		s.logger.Warn("persist attempt failed, retrying",
			"user_id", p.UserID,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			s.metrics.RecordPersist(PersistSync, false)
			return errs.Transient(ctx.Err(), "persist cancelled")
		case <-time.After(delay):
		}
		delay *= 2
	}
	s.metrics.RecordPersist(PersistSync, false)
	return err
}

func (s *SyncPersister) Close() error {
	return nil
}

// NewPersister 按配置选择实现
func NewPersister(cfg *PersistConfig, store dao.PlayerStore, cache *dao.CacheDAO, pool *conc.Pool, l logger.Logger, m *metrics.BattleMetrics) Persister {
	if cfg.Mode == PersistSync {
		return NewSyncPersister(cfg, store, cache, l, m)
	}
	return NewAsyncPersister(cfg, store, cache, pool, l, m)
}
