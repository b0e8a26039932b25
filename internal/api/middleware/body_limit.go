package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-ledger/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明长度超限直接返回 413；未声明长度（分块传输）的请求体由 MaxBytesReader 截断，
// 读取时返回 *http.MaxBytesError，由处理器在绑定参数时转换为 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
