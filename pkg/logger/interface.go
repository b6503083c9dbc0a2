// pkg/logger/interface.go
package logger

import "context"

// Logger 结构化日志接口，参数为交替的 key/value
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	DebugContext(ctx context.Context, msg string, keysAndValues ...interface{})
	InfoContext(ctx context.Context, msg string, keysAndValues ...interface{})
	WarnContext(ctx context.Context, msg string, keysAndValues ...interface{})
	ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{})

	// Named 返回带子名称的 logger，名称以 "." 连接
	Named(name string) Logger
	WithFields(keysAndValues ...interface{}) Logger

	Sync() error
}

// ContextExtractor 从 context 提取附加字段（如 player_id、session_id）
type ContextExtractor func(ctx context.Context) []interface{}

type ctxFieldsKey struct{}

// ContextWithFields 在 context 上附加日志字段，由默认提取器读取
func ContextWithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	prev, _ := ctx.Value(ctxFieldsKey{}).([]interface{})
	merged := make([]interface{}, 0, len(prev)+len(keysAndValues))
	merged = append(merged, prev...)
	merged = append(merged, keysAndValues...)
	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

// DefaultContextExtractor 读取 ContextWithFields 写入的字段
func DefaultContextExtractor(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(ctxFieldsKey{}).([]interface{})
	return fields
}
