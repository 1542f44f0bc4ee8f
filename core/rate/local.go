package rate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// 超过该数量时清理空闲的 key
const sweepThreshold = 10000

type entry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Local 进程内令牌桶，窗口内最多 Limit 次，按均匀速率恢复
type Local struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*entry
	now     func() time.Time
}

// NewLocal 创建进程内限流器
func NewLocal(cfg Config) *Local {
	return &Local{cfg: cfg, entries: make(map[string]*entry), now: time.Now}
}

// Allow 实现 Limiter，不会返回错误
func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	if l.cfg.Limit <= 0 {
		return true, nil
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= sweepThreshold {
			l.sweep(now)
		}
		every := rate.Every(l.cfg.Window / time.Duration(l.cfg.Limit))
		e = &entry{limiter: rate.NewLimiter(every, l.cfg.Limit)}
		l.entries[key] = e
	}
	e.seen = now
	return e.limiter.AllowN(now, 1), nil
}

// sweep 删除一个窗口内未出现的 key，此时它们的令牌桶已满
func (l *Local) sweep(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.seen) > l.cfg.Window {
			delete(l.entries, k)
		}
	}
}

// Len 返回当前跟踪的 key 数量
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
