// Package metrics 战斗服务的 Prometheus 指标
package metrics

import (
	"fmt"
	"time"

	"github.com/lk2023060901/grandline/pkg/config"
	"github.com/lk2023060901/grandline/pkg/metrics/system"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	// SystemCollectInterval 系统指标采集间隔
	SystemCollectInterval time.Duration `mapstructure:"system_collect_interval" json:"system_collect_interval" yaml:"system_collect_interval"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:             "grandline_battle",
		SystemCollectInterval: 5 * time.Second,
	}
}

// BattleMetrics 战斗服务指标
type BattleMetrics struct {
	config *Config

	ActiveSessions  prometheus.Gauge
	SessionsTotal   *prometheus.CounterVec
	OutcomesTotal   *prometheus.CounterVec
	MovesTotal      *prometheus.CounterVec
	MoveDuration    prometheus.Histogram
	Explorations    *prometheus.CounterVec
	PersistTotal    *prometheus.CounterVec
	DBQueryTotal    *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	CacheHitTotal   *prometheus.CounterVec
	CacheMissTotal  *prometheus.CounterVec
	CPUPercent      prometheus.Gauge
	MemoryBytes     prometheus.Gauge
	Goroutines      prometheus.Gauge

	activeCount     atomic.Int64
	totalMoves      atomic.Int64
	rejectedMoves   atomic.Int64
	persistFailures atomic.Int64

	systemCollector *system.Collector
}

// New 创建战斗指标
func New(cfg *Config) (*BattleMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge metrics config: %w", err)
	}

	sysCollector, err := system.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create system collector: %w", err)
	}

	ns := newCfg.Namespace
	m := &BattleMetrics{
		config: newCfg,

		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "active_sessions",
			Help:      "当前进行中的战斗数",
		}),
		SessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "sessions_total",
			Help:      "创建的战斗总数",
		}, []string{"kind"}), // kind: pve/pvp
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "outcomes_total",
			Help:      "战斗结束总数",
		}, []string{"kind", "reason"}),
		MovesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "moves_total",
			Help:      "出招总数",
		}, []string{"result"}), // result: 错误分类
		MoveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "move_duration_seconds",
			Help:      "出招结算延迟（秒）",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		Explorations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "explorations_total",
			Help:      "探索结果总数",
		}, []string{"result"}), // result: encounter/boss/frost/gold/dark
		PersistTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "persist_total",
			Help:      "玩家数据落库总数",
		}, []string{"mode", "result"}),
		DBQueryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "db_queries_total",
			Help:      "数据库查询总数",
		}, []string{"operation", "result"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "db_query_duration_seconds",
			Help:      "数据库查询延迟（秒）",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		CacheHitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cache_hits_total",
			Help:      "缓存命中总数",
		}, []string{"cache_type"}), // cache_type: memory/redis
		CacheMissTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cache_misses_total",
			Help:      "缓存未命中总数",
		}, []string{"cache_type"}),
		CPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "cpu_percent",
			Help:      "进程所在主机 CPU 使用率",
		}),
		MemoryBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "memory_bytes",
			Help:      "已用内存（字节）",
		}),
		Goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "goroutines",
			Help:      "goroutine 数量",
		}),

		systemCollector: sysCollector,
	}

	sysCollector.Start(newCfg.SystemCollectInterval)
	return m, nil
}

// Register 注册指标到 Prometheus Registry
func (m *BattleMetrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.ActiveSessions,
		m.SessionsTotal,
		m.OutcomesTotal,
		m.MovesTotal,
		m.MoveDuration,
		m.Explorations,
		m.PersistTotal,
		m.DBQueryTotal,
		m.DBQueryDuration,
		m.CacheHitTotal,
		m.CacheMissTotal,
		m.CPUPercent,
		m.MemoryBytes,
		m.Goroutines,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordSessionStart 记录战斗开始
func (m *BattleMetrics) RecordSessionStart(kind string) {
	m.activeCount.Add(1)
	m.ActiveSessions.Inc()
	m.SessionsTotal.WithLabelValues(kind).Inc()
}

// RecordSessionEnd 记录战斗结束
func (m *BattleMetrics) RecordSessionEnd(kind, reason string) {
	m.activeCount.Add(-1)
	m.ActiveSessions.Dec()
	m.OutcomesTotal.WithLabelValues(kind, reason).Inc()
}

// RecordMove 记录一次出招，result 为错误分类
func (m *BattleMetrics) RecordMove(result string, duration float64) {
	m.totalMoves.Add(1)
	if result != "ok" {
		m.rejectedMoves.Add(1)
	}
	m.MovesTotal.WithLabelValues(result).Inc()
	m.MoveDuration.Observe(duration)
}

// RecordExplore 记录探索结果
func (m *BattleMetrics) RecordExplore(result string) {
	m.Explorations.WithLabelValues(result).Inc()
}

// RecordPersist 记录一次落库
func (m *BattleMetrics) RecordPersist(mode string, success bool) {
	result := "success"
	if !success {
		result = "failed"
		m.persistFailures.Add(1)
	}
	m.PersistTotal.WithLabelValues(mode, result).Inc()
}

// RecordDBQuery 记录数据库查询
func (m *BattleMetrics) RecordDBQuery(operation string, success bool, duration float64) {
	result := "success"
	if !success {
		result = "failed"
	}
	m.DBQueryTotal.WithLabelValues(operation, result).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheHit 记录缓存命中
func (m *BattleMetrics) RecordCacheHit(cacheType string) {
	m.CacheHitTotal.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *BattleMetrics) RecordCacheMiss(cacheType string) {
	m.CacheMissTotal.WithLabelValues(cacheType).Inc()
}

// SyncSystem 把系统采集器的最新值写入 gauge，由定时任务调用
func (m *BattleMetrics) SyncSystem() {
	s := m.systemCollector.GetStats()
	m.CPUPercent.Set(s.CPUPercent)
	m.MemoryBytes.Set(float64(s.MemoryBytes))
	m.Goroutines.Set(float64(s.Goroutines))
}

// Stats 汇总统计
type Stats struct {
	ActiveSessions  int64   `json:"active_sessions"`
	TotalMoves      int64   `json:"total_moves"`
	RejectedMoves   int64   `json:"rejected_moves"`
	PersistFailures int64   `json:"persist_failures"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryBytes     uint64  `json:"memory_bytes"`
	Goroutines      int     `json:"goroutines"`
}

// GetStats 获取统计数据
func (m *BattleMetrics) GetStats() Stats {
	sys := m.systemCollector.GetStats()
	return Stats{
		ActiveSessions:  m.activeCount.Load(),
		TotalMoves:      m.totalMoves.Load(),
		RejectedMoves:   m.rejectedMoves.Load(),
		PersistFailures: m.persistFailures.Load(),
		CPUPercent:      sys.CPUPercent,
		MemoryBytes:     sys.MemoryBytes,
		Goroutines:      sys.Goroutines,
	}
}

// GetConfig 获取配置
func (m *BattleMetrics) GetConfig() *Config {
	return m.config
}

// Stop 停止后台采集
func (m *BattleMetrics) Stop() {
	m.systemCollector.Stop()
}
