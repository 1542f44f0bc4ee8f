package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kochabx/hiding/core/util"
	"github.com/kochabx/hiding/log"
)

// LoggerConfig 日志中间件配置
type LoggerConfig struct {
	RequestBody bool                    // 是否记录请求体，敏感字段由日志脱敏规则处理
	Header      bool                    // 是否记录请求头
	HandlerName bool                    // 是否记录处理器名称
	SkipPaths   []string                // 跳过记录的路径
	SkipFunc    func(*gin.Context) bool // 动态跳过判断函数
	Logger      *log.Logger             // 自定义日志记录器
}

// Logger 记录访问日志，4xx 为 warn，5xx 为 error
func Logger(cfgs ...LoggerConfig) gin.HandlerFunc {
	cfg := LoggerConfig{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody []byte
		if cfg.RequestBody {
			if body, err := c.GetRawData(); err == nil {
				requestBody = body
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
			}
		}

		c.Next()

		logger := cfg.Logger
		if logger == nil {
			logger = log.G()
		}

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if query := c.Request.URL.RawQuery; query != "" {
			event = event.Str("query", query)
		}
		if rid := util.RequestID(c.Request.Context()); rid != "" {
			event = event.Str("request_id", rid)
		}
		if cfg.HandlerName {
			event = event.Str("handler", c.HandlerName())
		}
		if cfg.Header {
			event = event.Any("headers", c.Request.Header)
		}
		if len(requestBody) > 0 {
			// 合法 JSON 原样写入，脱敏规则才能按字段匹配
			if json.Valid(requestBody) {
				event = event.RawJSON("request_body", requestBody)
			} else {
				event = event.Bytes("request_body", requestBody)
			}
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}

		event.Send()
	}
}
