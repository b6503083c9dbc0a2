// Package sentry 错误上报客户端，并提供把 error 级日志转发到 Sentry 的日志钩子
package sentry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/grandline/pkg/config"
	"github.com/lk2023060901/grandline/pkg/logger"
	"go.uber.org/atomic"
	"go.uber.org/zap/zapcore"
)

// Option 调整 SDK 选项
type Option func(*sentry.ClientOptions)

// WithBeforeSend 上报前回调，返回 nil 丢弃事件
func WithBeforeSend(fn func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// Client Sentry 客户端；未配置 DSN 时所有方法为空操作
type Client struct {
	hub    *sentry.Hub
	config *Config

	captured *atomic.Uint64
	closed   *atomic.Bool
}

func New(cfg *Config, opts ...Option) (*Client, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge sentry config: %w", err)
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   newCfg,
		captured: atomic.NewUint64(0),
		closed:   atomic.NewBool(false),
	}
	if newCfg.DSN == "" {
		return c, nil
	}

	clientOpts := newCfg.toClientOptions()
	for _, opt := range opts {
		opt(&clientOpts)
	}
	sc, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	hub := sentry.NewHub(sc, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range newCfg.Tags {
			scope.SetTag(k, v)
		}
	})
	c.hub = hub
	return c, nil
}

// Enabled 是否真正上报
func (c *Client) Enabled() bool {
	return c.hub != nil && !c.closed.Load()
}

// CaptureError 上报错误，extra 作为附加数据
func (c *Client) CaptureError(err error, extra map[string]interface{}) {
	if !c.Enabled() || err == nil {
		return
	}
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetExtras(extra)
		if id := c.hub.CaptureException(err); id != nil {
			c.captured.Inc()
		}
	})
}

// CaptureMessage 上报一条消息
func (c *Client) CaptureMessage(msg string, level sentry.Level, extra map[string]interface{}) {
	if !c.Enabled() {
		return
	}
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetExtras(extra)
		if id := c.hub.CaptureMessage(msg); id != nil {
			c.captured.Inc()
		}
	})
}

// Recover 在 defer 中使用：上报 panic 后继续向上抛出
func (c *Client) Recover() {
	if r := recover(); r != nil {
		if c.Enabled() {
			c.hub.Recover(r)
			c.hub.Flush(c.config.ShutdownTimeout)
		}
		panic(r)
	}
}

// LoggerHook 把 error 及以上级别的日志转发为 Sentry 消息
func (c *Client) LoggerHook() logger.Hook {
	return logger.MinLevelHook(logger.ErrorLevel, func(entry zapcore.Entry, fields []zapcore.Field) {
		if !c.Enabled() {
			return
		}
		extra := logger.FieldsToMap(fields)
		if entry.LoggerName != "" {
			extra["logger"] = entry.LoggerName
		}
		c.CaptureMessage(entry.Message, sentry.LevelError, extra)
	})
}

// Captured 已交给 SDK 的事件数
func (c *Client) Captured() uint64 {
	return c.captured.Load()
}

func (c *Client) Flush(timeout time.Duration) bool {
	if c.hub == nil {
		return true
	}
	return c.hub.Flush(timeout)
}

// Close 刷新缓冲事件，可重复调用
func (c *Client) Close() error {
	if !c.closed.CAS(false, true) {
		return nil
	}
	if c.hub != nil {
		c.hub.Flush(c.config.ShutdownTimeout)
	}
	return nil
}
