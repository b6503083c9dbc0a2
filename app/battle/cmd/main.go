package main

import (
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/job"
	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/service"
	"github.com/lk2023060901/grandline/pkg/app"
	"github.com/lk2023060901/grandline/pkg/compress"
	"github.com/lk2023060901/grandline/pkg/config"
	"github.com/lk2023060901/grandline/pkg/database/postgres"
	"github.com/lk2023060901/grandline/pkg/database/redis"
	"github.com/lk2023060901/grandline/pkg/database/sqlite"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/prometheus"
	"github.com/lk2023060901/grandline/pkg/sentry"
)

// 持久层驱动
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// StoreConfig 持久层选择
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=postgres sqlite memory"`
}

// CacheConfig 玩家快照 Redis 缓存配置
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Compress compress.Type `mapstructure:"compress"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RuntimeConfig 协程池与随机数
type RuntimeConfig struct {
	PoolSize int `mapstructure:"pool_size" validate:"gte=0"`
	// Seed 为 0 时使用当前时间
	Seed uint64 `mapstructure:"seed"`
}

// Config 定义 Battle 服务的完整配置结构
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// 内容表
	GameConfig gameconfig.Config `mapstructure:"gameconfig"`

	// 持久层
	Store    StoreConfig     `mapstructure:"store"`
	Database postgres.Config `mapstructure:"database"`
	SQLite   sqlite.Config   `mapstructure:"sqlite"`

	// Redis 配置（缓存与租约共用）
	Redis redis.Config        `mapstructure:"redis"`
	Cache CacheConfig         `mapstructure:"cache"`
	Lease manager.LeaseConfig `mapstructure:"lease"`

	// 玩家、遭遇与战斗
	Persist   manager.PersistConfig   `mapstructure:"persist"`
	Player    manager.PlayerConfig    `mapstructure:"player"`
	Encounter manager.EncounterConfig `mapstructure:"encounter"`
	Battle    service.BattleConfig    `mapstructure:"battle"`
	Runtime   RuntimeConfig           `mapstructure:"runtime"`

	// 周期任务
	Jobs job.Config `mapstructure:"jobs"`

	// 指标与上报
	Metrics    metrics.Config    `mapstructure:"metrics"`
	Prometheus prometheus.Config `mapstructure:"prometheus"`
	Sentry     sentry.Config     `mapstructure:"sentry"`
}

func main() {
	var cfg Config

	// 1. 加载并校验配置
	if err := app.LoadConfig(&cfg); err != nil {
		panic(err)
	}
	if err := config.NewValidator().Validate(&cfg); err != nil {
		panic(err)
	}

	// 2. 错误上报，DSN 为空时为空操作
	reporter, err := sentry.New(&cfg.Sentry)
	if err != nil {
		panic(err)
	}

	// 3. 初始化主日志，error 级别日志转发到 Sentry
	l, err := logger.New(&cfg.Log, logger.WithHooks(reporter.LoggerHook()))
	if err != nil {
		panic(err)
	}

	// 4. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l, reporter)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		_ = reporter.Close()
		return
	}
	defer cleanup()

	// 5. 运行服务
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
