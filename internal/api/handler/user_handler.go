package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc       service.UserService
	attendanceSvc service.AttendanceService
	now           func() time.Time
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, attendanceSvc service.AttendanceService) *UserHandler {
	return &UserHandler{userSvc: userSvc, attendanceSvc: attendanceSvc, now: time.Now}
}

// ListUsers 用户列表，附带每个用户的今日状态（管理员）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	date := today(h.now)
	users := h.userSvc.List()

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		status := h.attendanceSvc.TodayStatus(users[i].ID, date)
		list = append(list, service.ToUserResponse(&users[i], status))
	}
	response.OK(c, list)
}

// CreateUser 新增用户（管理员）
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.Add(c.Request.Context(), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, service.ToUserResponse(user, service.TodayNotCheckedIn))
}

// ToggleAdmin 切换管理员权限（管理员）
// PUT /api/v1/users/:id/admin
func (h *UserHandler) ToggleAdmin(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userSvc.ToggleAdmin(c.Request.Context(), id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, service.ToUserResponse(user, h.attendanceSvc.TodayStatus(user.ID, today(h.now))))
}

// DeleteUser 删除用户及其全部出勤记录（管理员）
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrDuplicateUsername):
		response.Conflict(c, 20002, "用户名已存在")
	case errors.Is(err, service.ErrProtectedUser):
		response.Forbidden(c, 20003, "根管理员不可修改或删除")
	case errors.Is(err, service.ErrUserFieldsRequired):
		response.BadRequest(c, 20004, "用户名、密码和姓名均不能为空")
	case errors.Is(err, service.ErrPersistFailed):
		response.Error(c, http.StatusInternalServerError, 50001, "保存数据失败")
	default:
		response.InternalError(c)
	}
}
