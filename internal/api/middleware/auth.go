package middleware

import (
	"github.com/gin-gonic/gin"

	"attendance-ledger/internal/model"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/response"
)

// ContextUserKey 认证通过后注入 gin.Context 的当前用户（*model.User）
const ContextUserKey = "user"

// BasicAuth 凭证认证中间件
// 每个请求携带 Authorization: Basic <base64(username:password)>，
// 与用户目录比对后将当前用户注入上下文；不签发会话或 Token
func BasicAuth(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="attendance"`)
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		user, err := users.Authenticate(username, password)
		if err != nil {
			response.Unauthorized(c, 11001, "用户名或密码错误")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// AdminOnly 管理员权限中间件，须挂在 BasicAuth 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ContextUserKey)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		user, ok := v.(*model.User)
		if !ok || !user.IsAdmin {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}

		c.Next()
	}
}
