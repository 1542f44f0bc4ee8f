package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	hiderrors "github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
	khttp "github.com/kochabx/hiding/transport/http"
)

// RecoveryConfig Recovery 中间件配置
type RecoveryConfig struct {
	StackTrace bool        // 是否记录堆栈信息
	Logger     *log.Logger // 自定义日志记录器
}

// Recovery 捕获 panic，记录请求后返回 500 响应
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	cfg := RecoveryConfig{
		StackTrace: true,
	}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger := cfg.Logger
			if logger == nil {
				logger = log.G()
			}
			// 请求体可能含有密钥，不记录
			httpRequest, _ := httputil.DumpRequest(c.Request, false)

			if isBrokenPipe(rec) {
				logger.Warn().
					Str("error", fmt.Sprint(rec)).
					Bytes("request", httpRequest).
					Msg("broken pipe")
				_ = c.Error(fmt.Errorf("%v", rec))
				c.Abort()
				return
			}

			event := logger.Error().
				Str("error", fmt.Sprint(rec)).
				Bytes("request", httpRequest)
			if cfg.StackTrace {
				event = event.Bytes("stack", debug.Stack())
			}
			event.Msg("panic recovered")

			khttp.GinAbort(c, hiderrors.Internal("internal server error"))
		}()
		c.Next()
	}
}

func isBrokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var se *os.SyscallError
	var ne *net.OpError
	if !errors.As(err, &ne) || !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
