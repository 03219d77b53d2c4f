package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// multipartOverhead multipart 边界与表单头的余量.
	multipartOverhead = 64 * 1024
	bodyTooLargeKey   = "body_too_large"
)

// BodyLimitMiddleware 为上传请求加硬性字节上限，超限的请求体不会被完整读入.
// 声明的 Content-Length 已超限时不再读取请求体，交给处理器按校验失败处理.
func BodyLimitMiddleware(maxFileBytes int64) gin.HandlerFunc {
	limit := maxFileBytes + multipartOverhead

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.Set(bodyTooLargeKey, true)
			c.Request.Body = http.NoBody
			c.Next()

			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// BodyTooLarge 请求体是否超限；err 为读取表单时的错误，可为 nil.
func BodyTooLarge(c *gin.Context, err error) bool {
	if c.GetBool(bodyTooLargeKey) {
		return true
	}

	if err == nil {
		return false
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}

	return strings.Contains(err.Error(), "request body too large")
}
