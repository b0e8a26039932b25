package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 校验凭证并返回用户信息
// POST /api/v1/auth/login
// 不签发会话；后续请求以 Basic 凭证逐次认证
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
