package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/hiding/transport/http/metrics"
)

// Metrics 按路由模板记录请求数与耗时，p 为 nil 时使用 metrics.Prom
func Metrics(p *metrics.Prometheus, skipPaths ...string) gin.HandlerFunc {
	if p == nil {
		p = metrics.Prom
	}
	matcher := NewPathMatcher(skipPaths)

	return func(c *gin.Context) {
		if matcher.Match(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		p.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
