package log

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var global atomic.Pointer[Logger]

func init() {
	global.Store(New())
}

// G 返回全局日志实例
func G() *Logger {
	return global.Load()
}

// SetGlobalLogger 替换全局日志实例
func SetGlobalLogger(l *Logger) {
	if l != nil {
		global.Store(l)
	}
}

// SetGlobalLevel 调整全局日志级别
func SetGlobalLevel(level zerolog.Level) {
	l := *global.Load()
	l.Logger = l.Logger.Level(level)
	global.Store(&l)
}

// Debug 返回 debug 级别事件
func Debug() *zerolog.Event {
	return G().Debug()
}

// Info 返回 info 级别事件
func Info() *zerolog.Event {
	return G().Info()
}

// Warn 返回 warn 级别事件
func Warn() *zerolog.Event {
	return G().Warn()
}

// Error 返回带堆栈的 error 级别事件
func Error() *zerolog.Event {
	return G().Error().Stack()
}

// Fatal 返回带堆栈的 fatal 级别事件
func Fatal() *zerolog.Event {
	return G().Fatal().Stack()
}

// Infof 格式化输出 info 日志
func Infof(format string, args ...any) {
	G().Info().Msgf(format, args...)
}

// Errorf 格式化输出 error 日志
func Errorf(format string, args ...any) {
	G().Error().Stack().Msgf(format, args...)
}
