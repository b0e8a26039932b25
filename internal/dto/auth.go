package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应（不签发令牌，后续请求携带 Basic 认证头）
type LoginResponse struct {
	User UserResponse `json:"user"`
}
