package dto

// ── 出勤模块 DTO ──

// CheckRequest 签到/签退请求
// 客户端先完成定位：成功时上报坐标，失败时上报 location_error
type CheckRequest struct {
	BusinessTrip  bool     `json:"business_trip"`
	Latitude      *float64 `json:"latitude"       binding:"omitempty,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude"      binding:"omitempty,gte=-180,lte=180"`
	LocationError string   `json:"location_error" binding:"omitempty,oneof=permission_denied position_unavailable timeout unknown"`
}

// CheckResponse 签到/签退响应
type CheckResponse struct {
	Record          AttendanceRecordResponse `json:"record"`
	Decision        string                   `json:"decision"`
	DistanceMeters  *float64                 `json:"distance_meters,omitempty"`
	LocationUnknown bool                     `json:"location_unknown"`
}

// AttendanceRecordResponse 出勤记录
type AttendanceRecordResponse struct {
	UserID       int    `json:"user_id"`
	UserName     string `json:"user_name"`
	Date         string `json:"date"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time,omitempty"`
	Status       string `json:"status"`
}

// RecordListRequest 个人记录查询参数
type RecordListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=366"`
}

// TodayStatusResponse 今日状态
type TodayStatusResponse struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}
