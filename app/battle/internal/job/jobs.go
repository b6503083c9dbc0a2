package job

import (
	"context"

	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
)

// Config 周期任务配置，值为空时禁用对应任务
type Config struct {
	SystemMetrics  string `mapstructure:"system_metrics" json:"system_metrics" yaml:"system_metrics"`
	EncounterPurge string `mapstructure:"encounter_purge" json:"encounter_purge" yaml:"encounter_purge"`
	LeaseRefresh   string `mapstructure:"lease_refresh" json:"lease_refresh" yaml:"lease_refresh"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		SystemMetrics:  "@every 5s",
		EncounterPurge: "@every 1m",
		LeaseRefresh:   "@every 10s",
	}
}

// 任务名
const (
	NameSystemMetrics  = "system_metrics"
	NameEncounterPurge = "encounter_purge"
	NameLeaseRefresh   = "lease_refresh"
)

// RegisterDefaults 注册战斗服务的周期任务；lease 未启用时跳过续期任务
func RegisterDefaults(
	s *Scheduler,
	cfg *Config,
	m *metrics.BattleMetrics,
	encounters *manager.EncounterTracker,
	lease *manager.InstanceLease,
) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := s.Add(NameSystemMetrics, cfg.SystemMetrics, func(context.Context) error {
		m.SyncSystem()
		return nil
	}); err != nil {
		return err
	}

	if err := s.Add(NameEncounterPurge, cfg.EncounterPurge, func(context.Context) error {
		if n := encounters.Purge(); n > 0 {
			s.logger.Debug("expired encounters purged", "count", n)
		}
		return nil
	}); err != nil {
		return err
	}

	if lease != nil && lease.Enabled() {
		if err := s.Add(NameLeaseRefresh, cfg.LeaseRefresh, lease.Refresh); err != nil {
			return err
		}
	}
	return nil
}
