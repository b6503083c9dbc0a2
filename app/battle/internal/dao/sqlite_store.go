package dao

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/pkg/database/sqlite"
	"github.com/lk2023060901/grandline/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLitePlayerStore 单机部署使用的本地存储
type SQLitePlayerStore struct {
	db      *sql.DB
	logger  logger.Logger
	metrics *metrics.BattleMetrics
}

// OpenSQLitePlayerStore 打开数据库并执行迁移
func OpenSQLitePlayerStore(ctx context.Context, cfg sqlite.Config, l logger.Logger, m *metrics.BattleMetrics) (*SQLitePlayerStore, error) {
	db, err := sqlite.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := sqlite.ApplyMigrations(ctx, db, migrationsFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate players db: %w", err)
	}
	return &SQLitePlayerStore{
		db:      db,
		logger:  logger.OrDefault(l).Named("dao.player"),
		metrics: m,
	}, nil
}

// Load 读取玩家文档
func (d *SQLitePlayerStore) Load(ctx context.Context, userID string) ([]byte, error) {
	start := time.Now()
	var success bool
	defer func() {
		d.metrics.RecordDBQuery("select", success, time.Since(start).Seconds())
	}()

	query, args, err := squirrel.Select("doc").
		From(playersTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var doc string
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	return []byte(doc), nil
}

// Upsert 写入玩家文档
func (d *SQLitePlayerStore) Upsert(ctx context.Context, userID string, doc []byte) error {
	start := time.Now()
	var success bool
	defer func() {
		d.metrics.RecordDBQuery("upsert", success, time.Since(start).Seconds())
	}()

	query, args, err := squirrel.Insert(playersTable).
		Columns("user_id", "doc", "updated_at").
		Values(userID, string(doc), time.Now().UnixMilli()).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
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
func (d *SQLitePlayerStore) UnlockAll(ctx context.Context) (int64, error) {
	start := time.Now()
	var success bool
	defer func() {
		d.metrics.RecordDBQuery("update", success, time.Since(start).Seconds())
	}()

	query, args, err := squirrel.Update(playersTable).
		Set("doc", squirrel.Expr("json_set(doc, ?, json('false'), ?, json('false'))",
			"$."+fieldLocked, "$."+fieldVerification)).
		Set("updated_at", time.Now().UnixMilli()).
		Where(squirrel.Expr("json_extract(doc, ?) = 1", "$."+fieldLocked)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		d.logger.Error("failed to unlock players", "error", err)
		return 0, fmt.Errorf("failed to unlock players: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	success = true
	return n, nil
}

func (d *SQLitePlayerStore) Close() error {
	return d.db.Close()
}
