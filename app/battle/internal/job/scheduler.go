// Package job 基于 cron 的周期任务
package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Func 任务函数，ctx 在调度器停止时取消
type Func func(ctx context.Context) error

// Scheduler 周期任务调度器，实现 app.Server
type Scheduler struct {
	logger logger.Logger
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewScheduler 创建调度器；任务 panic 被恢复并记录，上一次未结束时跳过本次
func NewScheduler(l logger.Logger) *Scheduler {
	log := logger.OrDefault(l).Named("job")
	cl := cronLogger{l: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: log,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Add 注册任务，spec 支持秒级表达式和 @every；spec 为空时不注册
func (s *Scheduler) Add(name, spec string, fn Func) error {
	if spec == "" {
		s.logger.Debug("job disabled", "job", name)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := fn(s.ctx); err != nil {
			s.logger.Warn("job failed",
				"job", name,
				"duration", time.Since(start),
				"error", err,
			)
			return
		}
		s.logger.Debug("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	s.entries[name] = id
	return nil
}

// Jobs 已注册的任务名
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) Start() error {
	s.cron.Start()
	s.logger.Info("job scheduler started", "jobs", len(s.Jobs()))
	return nil
}

// Stop 取消任务 ctx 并等待运行中的任务结束
func (s *Scheduler) Stop() error {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("job scheduler stopped")
	return nil
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
