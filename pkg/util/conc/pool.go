// Package conc 基于 ants 的协程池
package conc

import (
	"fmt"
	"time"

	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// Pool 有界协程池，任务 panic 会被记录而不会终止进程
type Pool struct {
	p      *ants.Pool
	logger logger.Logger
}

// NewPool size <= 0 时使用 ants 默认容量
func NewPool(size int, l logger.Logger) (*Pool, error) {
	log := logger.OrDefault(l).Named("conc")
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	p, err := ants.NewPool(size,
		ants.WithExpiryDuration(time.Minute),
		ants.WithPanicHandler(func(r interface{}) {
			log.Error("task panicked", "panic", fmt.Sprint(r))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}
	return &Pool{p: p, logger: log}, nil
}

// Submit 提交任务，池满时阻塞等待空闲 worker
func (p *Pool) Submit(task func()) error {
	if err := p.p.Submit(task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}
	return nil
}

// Go 提交任务，池已关闭时退化为直接起 goroutine
func (p *Pool) Go(task func()) {
	if err := p.p.Submit(task); err != nil {
		p.logger.Warn("pool rejected task, running inline goroutine", "error", err)
		go task()
	}
}

func (p *Pool) Running() int {
	return p.p.Running()
}

func (p *Pool) Cap() int {
	return p.p.Cap()
}

// Release 等待进行中的任务结束（最多 timeout）后释放池
func (p *Pool) Release(timeout time.Duration) error {
	if timeout <= 0 {
		p.p.Release()
		return nil
	}
	return p.p.ReleaseTimeout(timeout)
}

// Close 实现 app.Closer
func (p *Pool) Close() error {
	return p.Release(5 * time.Second)
}
