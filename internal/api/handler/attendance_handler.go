package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/model"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/response"
)

// AttendanceHandler 出勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
	fence         service.Fence
	recentLimit   int
	now           func() time.Time
	logger        *zap.Logger
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService, fence service.Fence, recentLimit int, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceSvc: attendanceSvc,
		fence:         fence,
		recentLimit:   recentLimit,
		now:           time.Now,
		logger:        logger,
	}
}

// ListMine 当前用户最近的出勤记录
// GET /api/v1/attendance/me?limit=5
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	user, ok := MustGetUser(c)
	if !ok {
		return
	}

	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = h.recentLimit
	}

	records := h.attendanceSvc.RecentRecords(user.ID, limit)
	list := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		list = append(list, toRecordResponse(&records[i]))
	}
	response.OK(c, list)
}

// Today 当前用户今日出勤状态
// GET /api/v1/attendance/today
func (h *AttendanceHandler) Today(c *gin.Context) {
	user, ok := MustGetUser(c)
	if !ok {
		return
	}

	date := today(h.now)
	response.OK(c, dto.TodayStatusResponse{
		Date:   date,
		Status: string(h.attendanceSvc.TodayStatus(user.ID, date)),
	})
}

// CheckIn 签到：先解析位置判定，再写入账本
// POST /api/v1/attendance/check-in
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	user, ok := MustGetUser(c)
	if !ok {
		return
	}

	var req dto.CheckRequest
	if !bindJSON(c, &req) {
		return
	}

	decision, distance := h.resolveLocation(c.Request.Context(), user.ID, &req)
	date, clock := service.LocalStamp(h.now())

	result, err := h.attendanceSvc.CheckIn(c.Request.Context(), &service.CheckInInput{
		UserID:       user.ID,
		UserName:     user.Name,
		Date:         date,
		Time:         clock,
		BusinessTrip: req.BusinessTrip,
		Decision:     decision,
	})
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, toCheckResponse(result, decision, distance))
}

// CheckOut 签退：先解析位置判定，再更新当日未签退记录
// POST /api/v1/attendance/check-out
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	user, ok := MustGetUser(c)
	if !ok {
		return
	}

	var req dto.CheckRequest
	if !bindJSON(c, &req) {
		return
	}

	decision, distance := h.resolveLocation(c.Request.Context(), user.ID, &req)
	date, clock := service.LocalStamp(h.now())

	result, err := h.attendanceSvc.CheckOut(c.Request.Context(), &service.CheckOutInput{
		UserID:       user.ID,
		Date:         date,
		Time:         clock,
		BusinessTrip: req.BusinessTrip,
		Decision:     decision,
	})
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, toCheckResponse(result, decision, distance))
}

// ── 内部辅助方法 ──

// resolveLocation 将客户端上报的坐标或定位故障转换为围栏判定
func (h *AttendanceHandler) resolveLocation(ctx context.Context, userID int, req *dto.CheckRequest) (service.LocationDecision, *float64) {
	provider := service.StaticPosition{Fault: req.LocationError}
	if req.Latitude != nil && req.Longitude != nil {
		provider.Coord = &service.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	decision, err := service.ResolveLocation(ctx, provider, h.fence)
	if err != nil {
		h.logger.Info("定位失败，按未知位置处理", zap.Int("user_id", userID), zap.Error(err))
		return decision, nil
	}

	d := service.DistanceMeters(*provider.Coord, h.fence.Anchor)
	return decision, &d
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 30001, "今日已签到，请先签退")
	case errors.Is(err, service.ErrNoOpenRecord):
		response.Conflict(c, 30002, "今日没有未签退的签到记录")
	case errors.Is(err, service.ErrOutOfRange):
		response.Forbidden(c, 30003, "当前位置不在打卡范围内")
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidTime):
		response.BadRequest(c, 30004, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrPersistFailed):
		response.Error(c, http.StatusInternalServerError, 50001, "保存数据失败")
	default:
		response.InternalError(c)
	}
}

func toRecordResponse(r *model.AttendanceRecord) dto.AttendanceRecordResponse {
	resp := dto.AttendanceRecordResponse{
		UserID:      r.UserID,
		UserName:    r.UserName,
		Date:        r.Date,
		CheckInTime: r.CheckInTime,
		Status:      r.Status,
	}
	if !r.IsOpen() {
		resp.CheckOutTime = *r.CheckOutTime
	}
	return resp
}

func toCheckResponse(result *service.AttendanceResult, decision service.LocationDecision, distance *float64) dto.CheckResponse {
	return dto.CheckResponse{
		Record:          toRecordResponse(&result.Record),
		Decision:        string(decision),
		DistanceMeters:  distance,
		LocationUnknown: result.LocationUnknown,
	}
}
