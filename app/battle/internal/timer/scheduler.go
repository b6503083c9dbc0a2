// Package timer PvP 回合超时定时器
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/util/conc"
)

// Payload 调度时捕获的战斗状态，触发时与当前状态比对
type Payload struct {
	SessionID  string
	LastMoveAt time.Time
}

// Handler 定时器触发回调
type Handler func(ctx context.Context, p Payload)

// Scheduler 一次性定时器，回调在协程池中执行
type Scheduler struct {
	pool   *conc.Pool
	logger logger.Logger

	mu      sync.Mutex
	handler Handler
	timers  map[*time.Timer]struct{}
	closed  bool
}

// NewScheduler 创建定时器，pool 为 nil 时回调直接起 goroutine
func NewScheduler(pool *conc.Pool, l logger.Logger) *Scheduler {
	return &Scheduler{
		pool:   pool,
		logger: logger.OrDefault(l).Named("timer"),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Bind 设置回调，只能在调度前调用
func (s *Scheduler) Bind(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// ScheduleOnce delay 后触发一次回调；关闭后调用被忽略
func (s *Scheduler) ScheduleOnce(delay time.Duration, p Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		_, live := s.timers[t]
		delete(s.timers, t)
		h := s.handler
		s.mu.Unlock()
		if !live || h == nil {
			return
		}
		s.run(func() { h(context.Background(), p) })
	})
	s.timers[t] = struct{}{}
	s.logger.Debug("turn timer scheduled",
		"session_id", p.SessionID,
		"delay", delay,
	)
}

func (s *Scheduler) run(task func()) {
	if s.pool == nil {
		go task()
		return
	}
	s.pool.Go(task)
}

// Pending 尚未触发的定时器数量
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close 停止所有未触发的定时器
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.logger.Info("turn timers stopped", "pending", len(s.timers))
	s.timers = nil
	return nil
}
