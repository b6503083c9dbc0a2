package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Second

var (
	unlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

	refreshScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`)
)

// Lock 单节点分布式锁，值为 UUID 以识别持有者
type Lock struct {
	client *Client
	key    string
	value  string
	ttl    time.Duration
}

// NewLock 创建锁，不会立即加锁
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{
		client: client,
		key:    key,
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

func (l *Lock) Key() string { return l.key }
func (l *Lock) Token() string { return l.value }

// TryLock 非阻塞加锁，已被占用时返回 ErrLockFailed
func (l *Lock) TryLock(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return ErrLockFailed
	}
	return nil
}

// Refresh 续期，锁已丢失时返回 ErrLockNotHeld
func (l *Lock) Refresh(ctx context.Context) error {
	n, err := l.client.evalInt(ctx, refreshScript, []string{l.key}, l.value, l.ttl.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to refresh lock: %w", err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Unlock 只有持有者才能释放
func (l *Lock) Unlock(ctx context.Context) error {
	n, err := l.client.evalInt(ctx, unlockScript, []string{l.key}, l.value)
	if err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
