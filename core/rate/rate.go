// Package rate 提供按 key 计数的限流器：redis 滑动窗口用于多实例，进程内令牌桶作为后备。
package rate

import (
	"context"
	"time"
)

// Limiter 按 key 限流
type Limiter interface {
	// Allow 消耗一次配额，err 不为 nil 时由调用方决定放行与否
	Allow(ctx context.Context, key string) (bool, error)
}

// Config 限流配置，Limit 为 0 表示不限流
type Config struct {
	Limit  int           `mapstructure:"limit" default:"60" validate:"gte=0"`
	Window time.Duration `mapstructure:"window" default:"1m" validate:"gt=0"`
	Prefix string        `mapstructure:"prefix" default:"hiding:rate:"`
}
