// Package system 进程级资源采集
package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/atomic"
)

// Stats 一次采集的结果
type Stats struct {
	CPUPercent    float64   `json:"cpu_percent"`    // 0-100
	MemoryPercent float64   `json:"memory_percent"` // 0-100
	MemoryBytes   uint64    `json:"memory_bytes"`
	Goroutines    int       `json:"goroutines"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Collector 周期采集当前进程的 CPU、RSS 和 goroutine 数
type Collector struct {
	proc *process.Process

	cpu        *atomic.Float64
	memPercent *atomic.Float64
	memBytes   *atomic.Uint64
	goroutines *atomic.Int64
	updatedAt  *atomic.Int64

	running  *atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New 创建采集器
func New() (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{
		proc:       proc,
		cpu:        atomic.NewFloat64(0),
		memPercent: atomic.NewFloat64(0),
		memBytes:   atomic.NewUint64(0),
		goroutines: atomic.NewInt64(0),
		updatedAt:  atomic.NewInt64(0),
		running:    atomic.NewBool(false),
		stopCh:     make(chan struct{}),
	}, nil
}

// Start 立即采集一次，然后按 interval 周期采集；重复调用无效
func (c *Collector) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if !c.running.CAS(false, true) {
		return
	}

	c.Collect()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop 停止采集并等待后台循环退出
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	c.running.Store(false)
}

// Collect 执行一次采集，单项失败时保留旧值
func (c *Collector) Collect() {
	if v, err := c.proc.CPUPercent(); err == nil {
		c.cpu.Store(v)
	}
	if info, err := c.proc.MemoryInfo(); err == nil {
		c.memBytes.Store(info.RSS)
		if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
			c.memPercent.Store(float64(info.RSS) / float64(vm.Total) * 100)
		}
	}
	c.goroutines.Store(int64(runtime.NumGoroutine()))
	c.updatedAt.Store(time.Now().UnixNano())
}

func (c *Collector) GetStats() Stats {
	s := Stats{
		CPUPercent:    c.cpu.Load(),
		MemoryPercent: c.memPercent.Load(),
		MemoryBytes:   c.memBytes.Load(),
		Goroutines:    int(c.goroutines.Load()),
	}
	if ts := c.updatedAt.Load(); ts > 0 {
		s.UpdatedAt = time.Unix(0, ts)
	}
	return s
}

func (c *Collector) CPUPercent() float64 { return c.cpu.Load() }

func (c *Collector) MemoryBytes() uint64 { return c.memBytes.Load() }
