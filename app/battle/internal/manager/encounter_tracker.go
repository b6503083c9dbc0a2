package manager

import (
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/pkg/cache/lru"
)

// EncounterConfig 探索遭遇配置
type EncounterConfig struct {
	// Cooldown 未处理的遭遇在此时间内阻止新的探索
	Cooldown time.Duration `mapstructure:"cooldown" json:"cooldown" yaml:"cooldown"`
	// TTL 遭遇保留时间，过期后无法再挑战
	TTL time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl"`
	// MaxSize 同时保留的遭遇数
	MaxSize int `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
}

// DefaultEncounterConfig 返回默认配置
func DefaultEncounterConfig() *EncounterConfig {
	return &EncounterConfig{
		Cooldown: 120 * time.Second,
		TTL:      30 * time.Minute,
		MaxSize:  100000,
	}
}

// EncounterTracker 每个玩家最多一个待处理的遭遇
type EncounterTracker struct {
	cache    *lru.LRU[string, model.Encounter]
	cooldown time.Duration
	now      func() time.Time
}

// NewEncounterTracker 创建遭遇记录，过期清理由定时任务调用 Purge
func NewEncounterTracker(cfg *EncounterConfig) *EncounterTracker {
	return newEncounterTracker(cfg, time.Now)
}

func newEncounterTracker(cfg *EncounterConfig, now func() time.Time) *EncounterTracker {
	def := DefaultEncounterConfig()
	if cfg == nil {
		cfg = def
	}
	cooldown, ttl, size := cfg.Cooldown, cfg.TTL, cfg.MaxSize
	if cooldown <= 0 {
		cooldown = def.Cooldown
	}
	if ttl <= 0 {
		ttl = def.TTL
	}
	if size <= 0 {
		size = def.MaxSize
	}
	return &EncounterTracker{
		cache: lru.New[string, model.Encounter](
			lru.Config{MaxSize: size, DefaultTTL: ttl},
			lru.WithClock[string, model.Encounter](now),
		),
		cooldown: cooldown,
		now:      now,
	}
}

// Pending 玩家待处理的遭遇
func (t *EncounterTracker) Pending(userID string) (model.Encounter, bool) {
	return t.cache.Get(userID)
}

// Put 记录遭遇，覆盖旧的
func (t *EncounterTracker) Put(userID string, enc model.Encounter) {
	t.cache.Set(userID, enc)
}

// Clear 清除遭遇
func (t *EncounterTracker) Clear(userID string) bool {
	return t.cache.Delete(userID)
}

// Remaining 距离冷却结束的时间，<= 0 表示可以放弃该遭遇重新探索
func (t *EncounterTracker) Remaining(enc model.Encounter) time.Duration {
	return t.cooldown - t.now().Sub(enc.At)
}

// Now 当前时间
func (t *EncounterTracker) Now() time.Time {
	return t.now()
}

// Purge 清理过期的遭遇
func (t *EncounterTracker) Purge() int {
	return t.cache.RemoveExpired()
}

func (t *EncounterTracker) Len() int {
	return t.cache.Len()
}

func (t *EncounterTracker) Close() error {
	return t.cache.Close()
}
