package middleware

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/hiding/core/crypto/hmac"
	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
	khttp "github.com/kochabx/hiding/transport/http"
)

const (
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

var ErrSignatureFailed = errors.Unauthorized("verify signature failed")

// SignatureConfig 签名验证中间件配置
type SignatureConfig struct {
	Secret     string                  // 签名密钥（必需）
	Expiration time.Duration           // 签名有效期，默认 5 分钟
	MaxBody    int64                   // 参与签名的请求体上限，默认 1MB
	SkipPaths  []string                // 跳过处理的路径
	SkipFunc   func(*gin.Context) bool // 动态跳过判断函数
	Logger     *log.Logger             // 自定义日志记录器
	now        func() time.Time
}

// Signature 校验 X-Timestamp 与 X-Signature，签名为 HMAC-SHA256(secret, timestamp + "\n" + body) 的十六进制
func Signature(cfg SignatureConfig) gin.HandlerFunc {
	if cfg.Secret == "" {
		panic("middleware: Secret is required")
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 5 * time.Minute
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = 1 << 20
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		logger := cfg.Logger
		if logger == nil {
			logger = log.G()
		}

		timestamp, err := strconv.ParseInt(c.GetHeader(HeaderTimestamp), 10, 64)
		if err != nil {
			logger.Warn().Str("header", HeaderTimestamp).Msg("signature: timestamp missing or malformed")
			khttp.GinAbort(c, ErrSignatureFailed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, cfg.MaxBody+1))
		if err != nil || int64(len(body)) > cfg.MaxBody {
			logger.Warn().Err(err).Msg("signature: read body failed")
			khttp.GinAbort(c, errors.BadRequest("request body too large or unreadable"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		err = hmac.Verify(cfg.Secret, c.GetHeader(HeaderSignature), timestamp,
			hmac.WithPayload(body),
			hmac.WithExpiration(cfg.Expiration),
			hmac.WithClock(cfg.now),
		)
		if err != nil {
			logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("signature: verify failed")
			khttp.GinAbort(c, ErrSignatureFailed)
			return
		}

		c.Next()
	}
}
