package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kochabx/hiding/core/rate"
	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
	khttp "github.com/kochabx/hiding/transport/http"
)

var ErrTooManyRequests = errors.TooManyRequests("too many requests")

// RateLimitConfig 限流中间件配置
type RateLimitConfig struct {
	Limiter    rate.Limiter              // 限流器（必需）
	KeyFunc    func(*gin.Context) string // 限流 key，默认客户端 IP
	FailClosed bool                      // 限流器出错时拒绝请求，默认放行
	SkipPaths  []string                  // 跳过处理的路径
	SkipFunc   func(*gin.Context) bool   // 动态跳过判断函数
	Logger     *log.Logger               // 自定义日志记录器
}

// RateLimit 按 key 限流，超限返回 429
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		panic("middleware: Limiter is required")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		ok, err := cfg.Limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger := cfg.Logger
			if logger == nil {
				logger = log.G()
			}
			logger.Warn().Err(err).Str("key", key).Bool("fail_closed", cfg.FailClosed).Msg("ratelimit: limiter failed")
			ok = !cfg.FailClosed
		}

		if !ok {
			khttp.GinAbort(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
