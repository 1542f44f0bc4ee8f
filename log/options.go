package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/hiding/log/desensitize"
)

type options struct {
	level      zerolog.Level
	caller     bool
	callerSkip int
	hook       *desensitize.Hook
}

// Option Logger 选项
type Option func(*options)

// WithLevel 设置日志级别，默认 info
func WithLevel(level zerolog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithCaller 记录调用位置
func WithCaller() Option {
	return func(o *options) {
		o.caller = true
	}
}

// WithCallerSkip 记录调用位置并额外跳过 skip 帧
func WithCallerSkip(skip int) Option {
	return func(o *options) {
		o.caller = true
		o.callerSkip = skip
	}
}

// WithDesensitize 设置脱敏钩子
func WithDesensitize(hook *desensitize.Hook) Option {
	return func(o *options) {
		o.hook = hook
	}
}
