package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/pkg/compress"
	"github.com/lk2023060901/grandline/pkg/database/redis"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/serializer"
)

const (
	// Redis key 前缀
	playerKeyPrefix = "cache:player:"

	// DefaultPlayerCacheTTL 玩家快照缓存时间
	DefaultPlayerCacheTTL = 30 * time.Minute
)

// CacheDAO 玩家快照的 Redis 二级缓存，值为 msgpack 编码后再压缩
type CacheDAO struct {
	redis   *redis.Client
	codec   *compress.Codec
	ttl     time.Duration
	logger  logger.Logger
	metrics *metrics.BattleMetrics
}

// NewCacheDAO 创建缓存 DAO，ttl 为 0 时使用默认值
func NewCacheDAO(rdb *redis.Client, codec *compress.Codec, ttl time.Duration, l logger.Logger, m *metrics.BattleMetrics) *CacheDAO {
	if ttl <= 0 {
		ttl = DefaultPlayerCacheTTL
	}
	return &CacheDAO{
		redis:   rdb,
		codec:   codec,
		ttl:     ttl,
		logger:  logger.OrDefault(l).Named("dao.cache"),
		metrics: m,
	}
}

func playerKey(userID string) string {
	return playerKeyPrefix + userID
}

// GetPlayer 从缓存获取玩家，未命中返回 nil, nil
func (d *CacheDAO) GetPlayer(ctx context.Context, userID string) (*model.PlayerRecord, error) {
	data, err := d.redis.GetBytes(ctx, playerKey(userID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			d.metrics.RecordCacheMiss("redis")
			return nil, nil
		}
		d.logger.Error("failed to get player from cache",
			"user_id", userID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get player from cache: %w", err)
	}

	d.metrics.RecordCacheHit("redis")

	p, err := DecodeSnapshot(d.codec, data)
	if err != nil {
		d.logger.Error("failed to decode player snapshot",
			"user_id", userID,
			"error", err,
		)
		return nil, err
	}
	return p, nil
}

// SetPlayer 写入玩家快照
func (d *CacheDAO) SetPlayer(ctx context.Context, p *model.PlayerRecord) error {
	data, err := EncodeSnapshot(d.codec, p)
	if err != nil {
		d.logger.Error("failed to encode player snapshot",
			"user_id", p.UserID,
			"error", err,
		)
		return err
	}

	if err := d.redis.Set(ctx, playerKey(p.UserID), data, d.ttl); err != nil {
		d.logger.Error("failed to set player cache",
			"user_id", p.UserID,
			"error", err,
		)
		return fmt.Errorf("failed to set player cache: %w", err)
	}
	return nil
}

// DeletePlayer 删除玩家缓存
func (d *CacheDAO) DeletePlayer(ctx context.Context, userID string) error {
	if _, err := d.redis.Del(ctx, playerKey(userID)); err != nil {
		d.logger.Error("failed to delete player cache",
			"user_id", userID,
			"error", err,
		)
		return fmt.Errorf("failed to delete player cache: %w", err)
	}
	return nil
}

// EncodeSnapshot msgpack 编码后按 codec 压缩
func EncodeSnapshot(codec *compress.Codec, p *model.PlayerRecord) ([]byte, error) {
	raw, err := serializer.Encode(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player: %w", err)
	}
	data, err := codec.Pack(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compress player: %w", err)
	}
	return data, nil
}

// DecodeSnapshot EncodeSnapshot 的逆过程，读取方按信封首字节识别压缩算法
func DecodeSnapshot(codec *compress.Codec, data []byte) (*model.PlayerRecord, error) {
	raw, err := codec.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress player: %w", err)
	}
	var p model.PlayerRecord
	if err := serializer.Decode(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return p.Clone(), nil
}
