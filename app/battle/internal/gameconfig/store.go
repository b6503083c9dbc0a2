package gameconfig

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lk2023060901/grandline/pkg/logger"
)

// Config 内容表配置
type Config struct {
	// DataDir 覆盖文件目录，为空时只使用内置默认表
	DataDir string `mapstructure:"data_dir" json:"data_dir" yaml:"data_dir"`
	// HotReload 监听目录变化并重新加载
	HotReload bool `mapstructure:"hot_reload" json:"hot_reload" yaml:"hot_reload"`
	// Debounce 合并短时间内的多次文件事件
	Debounce time.Duration `mapstructure:"debounce" json:"debounce" yaml:"debounce"`
}

// Store 持有当前生效的内容表，重新加载时整体替换
type Store struct {
	cfg    Config
	logger logger.Logger
	cur    atomic.Pointer[Tables]

	mu        sync.Mutex
	callbacks []func(*Tables)
	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewStore 加载内容表；HotReload 开启时开始监听 DataDir
func NewStore(cfg *Config, l logger.Logger) (*Store, error) {
	s := &Store{
		logger: logger.OrDefault(l).Named("gameconfig"),
		done:   make(chan struct{}),
	}
	if cfg != nil {
		s.cfg = *cfg
	}
	if s.cfg.Debounce <= 0 {
		s.cfg.Debounce = 200 * time.Millisecond
	}

	t, err := Load(s.cfg.DataDir, s.logger)
	if err != nil {
		return nil, err
	}
	s.cur.Store(t)

	if s.cfg.HotReload && s.cfg.DataDir != "" {
		if err := s.watch(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewStaticStore 使用给定的表，不读文件，主要用于测试
func NewStaticStore(t *Tables) *Store {
	s := &Store{logger: logger.NewNoop(), done: make(chan struct{})}
	t.index()
	s.cur.Store(t)
	return s
}

// Tables 当前生效的内容表，调用方不得修改
func (s *Store) Tables() *Tables {
	return s.cur.Load()
}

// OnChange 注册重新加载成功后的回调
func (s *Store) OnChange(fn func(*Tables)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Reload 重新读取 DataDir；失败时保留旧表
func (s *Store) Reload() error {
	t, err := Load(s.cfg.DataDir, s.logger)
	if err != nil {
		s.logger.Error("failed to reload game tables, keeping previous", "dir", s.cfg.DataDir, "error", err)
		return err
	}
	s.cur.Store(t)

	s.mu.Lock()
	callbacks := append([]func(*Tables){}, s.callbacks...)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn(t)
	}
	s.logger.Info("game tables reloaded",
		"dir", s.cfg.DataDir,
		"characters", len(t.Characters),
		"moves", len(t.Moves),
	)
	return nil
}

func (s *Store) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create table watcher: %w", err)
	}
	if err := w.Add(s.cfg.DataDir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", s.cfg.DataDir, err)
	}
	s.watcher = w

	s.wg.Add(1)
	go s.loop()
	return nil
}

func (s *Store) loop() {
	defer s.wg.Done()

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-s.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ".json" || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.cfg.Debounce)
			} else {
				timer.Reset(s.cfg.Debounce)
			}
			trigger = timer.C
		case <-trigger:
			trigger = nil
			_ = s.Reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("table watcher error", "error", err)
		}
	}
}

// Close 停止监听
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
