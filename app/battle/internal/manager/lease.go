package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/grandline/pkg/database/redis"
	"github.com/lk2023060901/grandline/pkg/logger"
)

// ErrLeaseHeld 另一个进程持有租约
var ErrLeaseHeld = errors.New("another battle instance holds the store lease")

// LeaseConfig 单实例租约配置
type LeaseConfig struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Key     string        `mapstructure:"key" json:"key" yaml:"key"`
	TTL     time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl"`
}

// InstanceLease 内存缓存是权威数据，同一个持久层只允许一个进程写入
// 启动时抢占 Redis 租约，抢不到直接失败
type InstanceLease struct {
	lock    *redis.Lock
	logger  logger.Logger
	enabled bool
}

// NewInstanceLease client 为 nil 或未启用时所有操作都是空操作
func NewInstanceLease(client *redis.Client, cfg *LeaseConfig, l logger.Logger) *InstanceLease {
	lease := &InstanceLease{logger: logger.OrDefault(l).Named("manager.lease")}
	if client == nil || cfg == nil || !cfg.Enabled {
		return lease
	}
	key := cfg.Key
	if key == "" {
		key = "lease:battle"
	}
	lease.lock = redis.NewLock(client, key, cfg.TTL)
	lease.enabled = true
	return lease
}

func (l *InstanceLease) Enabled() bool {
	return l.enabled
}

// Acquire 抢占租约
func (l *InstanceLease) Acquire(ctx context.Context) error {
	if !l.enabled {
		return nil
	}
	if err := l.lock.TryLock(ctx); err != nil {
		if errors.Is(err, redis.ErrLockFailed) {
			return fmt.Errorf("%w: %s", ErrLeaseHeld, l.lock.Key())
		}
		return err
	}
	l.logger.Info("instance lease acquired",
		"key", l.lock.Key(),
		"token", l.lock.Token(),
	)
	return nil
}

// Refresh 续期，由定时任务调用
func (l *InstanceLease) Refresh(ctx context.Context) error {
	if !l.enabled {
		return nil
	}
	if err := l.lock.Refresh(ctx); err != nil {
		l.logger.Error("failed to refresh instance lease", "key", l.lock.Key(), "error", err)
		return err
	}
	return nil
}

// Release 释放租约
func (l *InstanceLease) Release(ctx context.Context) error {
	if !l.enabled {
		return nil
	}
	if err := l.lock.Unlock(ctx); err != nil && !errors.Is(err, redis.ErrLockNotHeld) {
		return err
	}
	l.logger.Info("instance lease released", "key", l.lock.Key())
	return nil
}
