package logger

import "go.uber.org/zap/zapcore"

// Option BaseLogger 构建选项
type Option func(*BaseLogger)

// WithName 设置根名称
func WithName(name string) Option {
	return func(l *BaseLogger) {
		l.name = name
	}
}

// WithGlobalFields 追加全局字段，奇数个参数时忽略
func WithGlobalFields(keysAndValues ...interface{}) Option {
	return func(l *BaseLogger) {
		if len(keysAndValues)%2 != 0 {
			return
		}
		for i := 0; i < len(keysAndValues); i += 2 {
			if key, ok := keysAndValues[i].(string); ok {
				l.globalFields[key] = keysAndValues[i+1]
			}
		}
	}
}

// WithHooks 添加写入钩子
func WithHooks(hooks ...Hook) Option {
	return func(l *BaseLogger) {
		l.hooks = append(l.hooks, hooks...)
	}
}

// WithCore 替换输出 core（测试中接 zaptest/observer）
func WithCore(core zapcore.Core) Option {
	return func(l *BaseLogger) {
		l.core = core
	}
}

// WithContextExtractor 替换 context 字段提取器
func WithContextExtractor(fn ContextExtractor) Option {
	return func(l *BaseLogger) {
		if fn != nil {
			l.contextExtractor = fn
		}
	}
}
