package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/grandline/app/battle/internal/dao"
	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/job"
	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/service"
	"github.com/lk2023060901/grandline/app/battle/internal/timer"
	"github.com/lk2023060901/grandline/pkg/app"
	"github.com/lk2023060901/grandline/pkg/compress"
	"github.com/lk2023060901/grandline/pkg/database/postgres"
	"github.com/lk2023060901/grandline/pkg/database/redis"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/prometheus"
	"github.com/lk2023060901/grandline/pkg/sentry"
	"github.com/lk2023060901/grandline/pkg/util/conc"
)

// 初始化阶段访问外部依赖的超时
const initTimeout = 10 * time.Second

// provideGameConfigConfig 提供内容表配置
func provideGameConfigConfig(cfg *Config) *gameconfig.Config {
	return &cfg.GameConfig
}

// provideMetricsConfig 提供指标配置
func provideMetricsConfig(cfg *Config) *metrics.Config {
	return &cfg.Metrics
}

// providePrometheusConfig 提供 Prometheus 配置
func providePrometheusConfig(cfg *Config) *prometheus.Config {
	return &cfg.Prometheus
}

func providePersistConfig(cfg *Config) *manager.PersistConfig {
	return &cfg.Persist
}

func providePlayerConfig(cfg *Config) *manager.PlayerConfig {
	return &cfg.Player
}

func provideEncounterConfig(cfg *Config) *manager.EncounterConfig {
	return &cfg.Encounter
}

func provideLeaseConfig(cfg *Config) *manager.LeaseConfig {
	return &cfg.Lease
}

// providePostgres 仅在 postgres 驱动下建立连接池
func providePostgres(cfg *Config) (*postgres.Client, error) {
	if cfg.Store.Driver != StoreDriverPostgres {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	return postgres.New(ctx, &cfg.Database)
}

// provideRedis 缓存或租约启用时才连接 Redis
func provideRedis(cfg *Config) (*redis.Client, error) {
	if !cfg.Cache.Enabled && !cfg.Lease.Enabled {
		return nil, nil
	}
	return redis.NewClient(&cfg.Redis)
}

// providePlayerStore 按驱动选择持久层
func providePlayerStore(cfg *Config, pg *postgres.Client, l logger.Logger, m *metrics.BattleMetrics) (dao.PlayerStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	switch cfg.Store.Driver {
	case StoreDriverPostgres:
		store := dao.NewPostgresPlayerStore(pg, l, m)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case StoreDriverSQLite:
		store, err := dao.OpenSQLitePlayerStore(ctx, cfg.SQLite, l, m)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoreDriverMemory, "":
		l.Warn("using in-memory player store, records are lost on exit")
		return dao.NewMemoryPlayerStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// provideCacheDAO 未启用缓存时返回 nil，玩家管理器直接读持久层
func provideCacheDAO(cfg *Config, rdb *redis.Client, l logger.Logger, m *metrics.BattleMetrics) (*dao.CacheDAO, error) {
	if !cfg.Cache.Enabled || rdb == nil {
		return nil, nil
	}
	t := cfg.Cache.Compress
	if t == "" {
		t = compress.TypeSnappy
	}
	codec, err := compress.NewCodec(t)
	if err != nil {
		return nil, err
	}
	return dao.NewCacheDAO(rdb, codec, cfg.Cache.TTL, l, m), nil
}

// providePool 提供持久化与超时回调共用的协程池
func providePool(cfg *Config, l logger.Logger) (*conc.Pool, error) {
	return conc.NewPool(cfg.Runtime.PoolSize, l)
}

func provideRand(cfg *Config) service.Rand {
	return service.NewRand(cfg.Runtime.Seed)
}

// provideBattleService 创建战斗服务并把超时回调绑定到定时器
func provideBattleService(
	cfg *Config,
	l logger.Logger,
	players *manager.PlayerManager,
	battles *manager.BattleManager,
	encounters *manager.EncounterTracker,
	tables *gameconfig.Store,
	sched *timer.Scheduler,
	rng service.Rand,
	m *metrics.BattleMetrics,
) *service.BattleService {
	svc := service.NewBattleService(&cfg.Battle, l, players, battles, encounters, tables, sched, rng, m)
	sched.Bind(svc.HandleTimeout)
	return svc
}

// provideJobs 创建周期任务调度器并注册默认任务
func provideJobs(
	cfg *Config,
	l logger.Logger,
	m *metrics.BattleMetrics,
	encounters *manager.EncounterTracker,
	lease *manager.InstanceLease,
) (*job.Scheduler, error) {
	s := job.NewScheduler(l)
	if err := job.RegisterDefaults(s, &cfg.Jobs, m, encounters, lease); err != nil {
		return nil, err
	}
	return s, nil
}

// provideAppOptions 提供应用选项
func provideAppOptions(l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
	}
}

// Services 进程内对外暴露的游戏操作入口
type Services struct {
	Battle    *service.BattleService
	Encounter *service.EncounterService
	Player    *service.PlayerService
}

func provideServices(
	battle *service.BattleService,
	encounter *service.EncounterService,
	player *service.PlayerService,
) *Services {
	return &Services{Battle: battle, Encounter: encounter, Player: player}
}

// provideAppComponents 提供应用组件
// Closer 逆序关闭：先停定时器，再刷写持久化，最后断开存储
func provideAppComponents(
	baseApp *app.BaseApp,
	services *Services,
	promClient *prometheus.Client,
	battleMetrics *metrics.BattleMetrics,
	jobs *job.Scheduler,
	lease *manager.InstanceLease,
	sched *timer.Scheduler,
	persister manager.Persister,
	pool *conc.Pool,
	encounters *manager.EncounterTracker,
	tables *gameconfig.Store,
	store dao.PlayerStore,
	postgresClient *postgres.Client,
	redisClient *redis.Client,
	reporter *sentry.Client,
) app.Components {
	l := baseApp.Logger()

	// 注册战斗指标到 Prometheus
	if err := battleMetrics.Register(promClient.Registry()); err != nil {
		l.Warn("failed to register battle metrics", "error", err)
	}

	leaseServer := app.ServerFuncs{
		StartFn: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
			defer cancel()
			return lease.Acquire(ctx)
		},
		StopFn: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
			defer cancel()
			return lease.Release(ctx)
		},
	}

	l.Info("battle services ready",
		"battle", services.Battle != nil,
		"encounter", services.Encounter != nil,
		"player", services.Player != nil,
	)

	closers := []app.Closer{reporter}
	if redisClient != nil {
		closers = append(closers, redisClient)
	}
	if postgresClient != nil {
		closers = append(closers, postgresClient)
	}
	closers = append(closers,
		store,
		pool,
		persister,
		encounters,
		tables,
		app.CloserFunc(func() error {
			battleMetrics.Stop()
			return nil
		}),
		sched,
	)

	return app.Components{
		Servers: []app.Server{
			// 租约必须最先拿到
			leaseServer,
			promClient,
			jobs,
		},
		Closers: closers,
	}
}
