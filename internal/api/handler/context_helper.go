package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-ledger/internal/api/middleware"
	"attendance-ledger/internal/model"
	"attendance-ledger/pkg/response"
)

// MustGetUser 从 Gin 上下文中安全提取当前用户。
// 如果认证中间件未正确注入用户，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	u, ok := v.(*model.User)
	if !ok || u == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return u, true
}

// parseIDParam 解析路径中的整数 ID，失败时写入 400
func parseIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "无效的用户 ID")
		return 0, false
	}
	return id, true
}

// today 本地挂钟的当天日期
func today(now func() time.Time) string {
	return now().Local().Format(model.DateLayout)
}

// bindJSON 绑定 JSON 请求体，失败时写入响应并返回 false
// 请求体超过 BodyLimit 上限返回 413，其余绑定失败返回 400
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return false
	}
	response.BadRequest(c, 10001, "参数校验失败")
	return false
}
