package rate

import (
	"context"
	_ "embed"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/hiding/core/util/id"
)

var (
	//go:embed slidingwindow.lua
	slidingWindowLua    string
	slidingWindowScript = redis.NewScript(slidingWindowLua)
)

// SlidingWindow redis 有序集合实现的滑动窗口
type SlidingWindow struct {
	client redis.UniversalClient
	cfg    Config
	now    func() time.Time
}

// NewSlidingWindow 创建滑动窗口限流器
func NewSlidingWindow(client redis.UniversalClient, cfg Config) *SlidingWindow {
	return &SlidingWindow{client: client, cfg: cfg, now: time.Now}
}

// Allow 实现 Limiter
func (l *SlidingWindow) Allow(ctx context.Context, key string) (bool, error) {
	if l.cfg.Limit <= 0 {
		return true, nil
	}
	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{l.cfg.Prefix + key},
		l.now().UnixMilli(), l.cfg.Window.Milliseconds(), l.cfg.Limit, id.RequestID(),
	).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
