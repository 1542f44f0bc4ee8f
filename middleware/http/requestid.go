package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kochabx/hiding/core/util"
	"github.com/kochabx/hiding/core/util/id"
)

const HeaderRequestID = "X-Request-Id"

// RequestID 透传或生成请求 id，写入响应头和请求 context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" || len(rid) > 64 {
			rid = id.RequestID()
		}

		c.Header(HeaderRequestID, rid)
		c.Request = c.Request.WithContext(util.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
