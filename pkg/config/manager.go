package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Manager 包装 viper：文件 + 环境变量 + 默认值
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	callbacks []func()
}

// Option Manager 选项
type Option func(*Manager)

// WithViper 使用外部构造的 viper 实例（命令行覆盖已写入其中）
func WithViper(v *viper.Viper) Option {
	return func(m *Manager) { m.v = v }
}

// WithDefaults 设置最低优先级的默认值
func WithDefaults(defaults map[string]any) Option {
	return func(m *Manager) {
		for k, val := range defaults {
			m.v.SetDefault(k, val)
		}
	}
}

// WithEnvPrefix 绑定环境变量，GRANDLINE_BATTLE_TURN_TIMEOUT -> battle.turn_timeout
func WithEnvPrefix(prefix string) Option {
	return func(m *Manager) { m.bindEnv(prefix) }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{v: viper.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) bindEnv(prefix string) {
	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.AutomaticEnv()
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// LoadFile 读取配置文件，格式由扩展名决定
func (m *Manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
	}
	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Unmarshal 解码整个配置，支持 "30s" 形式的 duration 和逗号分隔的切片
func (m *Manager) Unmarshal(target any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(target, viper.DecodeHook(decodeHook())); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// UnmarshalKey 解码某个子树
func (m *Manager) UnmarshalKey(key string, target any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.UnmarshalKey(key, target, viper.DecodeHook(decodeHook())); err != nil {
		return fmt.Errorf("failed to unmarshal key %s: %w", key, err)
	}
	return nil
}

func (m *Manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetString(key)
}

func (m *Manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

// Watch 配置文件变化时依次调用回调
func (m *Manager) Watch(callback func()) {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, callback)
	first := len(m.callbacks) == 1
	m.mu.Unlock()

	if !first {
		return
	}
	m.v.OnConfigChange(func(fsnotify.Event) {
		m.mu.RLock()
		cbs := append([]func(){}, m.callbacks...)
		m.mu.RUnlock()
		for _, cb := range cbs {
			cb()
		}
	})
	m.v.WatchConfig()
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
