//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/service"
	"github.com/lk2023060901/grandline/app/battle/internal/timer"
	"github.com/lk2023060901/grandline/pkg/app"
	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/prometheus"
	"github.com/lk2023060901/grandline/pkg/sentry"
)

func InitApp(cfg *Config, l logger.Logger, reporter *sentry.Client) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,

		// 2. 指标收集
		provideMetricsConfig,
		metrics.New,

		// 3. 持久层与 Redis
		providePostgres,
		provideRedis,
		providePlayerStore,
		provideCacheDAO,

		// 4. 协程池与持久化
		providePool,
		providePersistConfig,
		manager.NewPersister,
		manager.NewMigrator,

		// 5. 管理层 (Manager)
		providePlayerConfig,
		manager.NewPlayerManager,
		manager.NewBattleManager,
		provideEncounterConfig,
		manager.NewEncounterTracker,
		provideLeaseConfig,
		manager.NewInstanceLease,

		// 6. 内容表
		provideGameConfigConfig,
		gameconfig.NewStore,

		// 7. 超时定时器与随机数
		timer.NewScheduler,
		provideRand,

		// 8. 服务层 (Service)
		provideBattleService,
		service.NewEncounterService,
		service.NewPlayerService,
		provideServices,

		// 9. 周期任务
		provideJobs,

		// 10. Prometheus 客户端
		providePrometheusConfig,
		prometheus.New,

		// 11. 组装与应用配置
		provideAppOptions,
		provideAppComponents,
	))
}
