// Package dao 玩家数据的持久化与二级缓存
package dao

import (
	"context"
	"errors"
)

//go:generate go tool mockgen -destination=./mocks/store_mock.go -package=mocks . PlayerStore

// ErrNotFound 持久层中不存在该玩家
var ErrNotFound = errors.New("dao: player not found")

// PlayerStore 玩家文档的持久化存储
// 文档是 JSON 编码的完整玩家记录，schema 迁移由上层处理
type PlayerStore interface {
	// Load 读取原始文档，不存在时返回 ErrNotFound
	Load(ctx context.Context, userID string) ([]byte, error)
	// Upsert 整体覆盖写入
	Upsert(ctx context.Context, userID string, doc []byte) error
	// UnlockAll 清除所有玩家的锁定标记，返回受影响的行数
	UnlockAll(ctx context.Context) (int64, error)
	Close() error
}

// 解锁时写入文档的字段
const (
	fieldLocked       = "is_locked"
	fieldVerification = "verification_active"
	playersTable      = "players"
)
