package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/pkg/database/postgres"
	"github.com/lk2023060901/grandline/pkg/logger"
)

const createPlayersTablePG = `CREATE TABLE IF NOT EXISTS players (
	user_id    TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var unlockPatch = fmt.Sprintf(`{%q: false, %q: false}`, fieldLocked, fieldVerification)

// PostgresPlayerStore 每个玩家一行 JSONB 文档
type PostgresPlayerStore struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.BattleMetrics
}

// NewPostgresPlayerStore 创建 PostgreSQL 存储
func NewPostgresPlayerStore(db *postgres.Client, l logger.Logger, m *metrics.BattleMetrics) *PostgresPlayerStore {
	return &PostgresPlayerStore{
		db:      db,
		logger:  logger.OrDefault(l).Named("dao.player"),
		metrics: m,
	}
}

// EnsureSchema 建表
func (d *PostgresPlayerStore) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.Exec(ctx, createPlayersTablePG); err != nil {
		return fmt.Errorf("failed to create players table: %w", err)
	}
	return nil
}

// Load 读取玩家文档
func (d *PostgresPlayerStore) Load(ctx context.Context, userID string) ([]byte, error) {
	start := time.Now()
	var success bool
	defer func() {
		d.metrics.RecordDBQuery("select", success, time.Since(start).Seconds())
	}()

	query, args, err := squirrel.Select("doc").
		From(playersTable).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var doc []byte
	if err := d.db.QueryRow(ctx, []any{&doc}, query, args...); err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			success = true
			return nil, ErrNotFound
		}
		d.logger.Error("failed to load player",
			"user_id", userID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	success = true
	return doc, nil
}

// Upsert 写入玩家文档
func (d *PostgresPlayerStore) Upsert(ctx context.Context, userID string, doc []byte) error {
	start := time.Now()
	var success bool
	defer func() {
		d.metrics.RecordDBQuery("upsert", success, time.Since(start).Seconds())
	}()

	query, args, err := squirrel.Insert(playersTable).
		Columns("user_id", "doc", "updated_at").
		Values(userID, json.RawMessage(doc), time.Now()).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := d.db.Exec(ctx, query, args...); err != nil {
		d.logger.Error("failed to upsert player",
			"user_id", userID,
			"error", err,
		)
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	success = true
	return nil
}

// UnlockAll 清除所有锁定标记
func (d *PostgresPlayerStore) UnlockAll(ctx context.Context) (int64, error) {
	start := time.Now()
	var success bool
	defer func() {
		d.metrics.RecordDBQuery("update", success, time.Since(start).Seconds())
	}()

	query, args, err := squirrel.Update(playersTable).
		Set("doc", squirrel.Expr("doc || ?::jsonb", unlockPatch)).
		Set("updated_at", time.Now()).
		Where(squirrel.Expr("(doc->>'" + fieldLocked + "')::boolean IS TRUE")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	n, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		d.logger.Error("failed to unlock players", "error", err)
		return 0, fmt.Errorf("failed to unlock players: %w", err)
	}

	success = true
	return n, nil
}

// Close 连接池由调用方管理
func (d *PostgresPlayerStore) Close() error {
	return nil
}
