package model

import "encoding/json"

// 出勤状态
const (
	StatusPresent      = "present"
	StatusBusinessTrip = "business-trip"
)

// 日期与时间格式（本地挂钟时间）
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// AttendanceRecord 出勤记录（持久化为 attendanceRecords 快照中的一项）
// CheckOutTime 为 nil 表示未签退的开放记录
type AttendanceRecord struct {
	UserID       int     `json:"userId"`
	UserName     string  `json:"userName"` // 签到时的显示名快照
	Date         string  `json:"date"`
	CheckInTime  string  `json:"checkInTime"`
	CheckOutTime *string `json:"checkOutTime"`
	Status       string  `json:"status"`
}

// IsOpen 是否尚未签退
func (r *AttendanceRecord) IsOpen() bool {
	return r.CheckOutTime == nil || *r.CheckOutTime == ""
}

// UnmarshalJSON 兼容旧数据：缺少 status 视为 present，空 checkOutTime 视为开放记录
func (r *AttendanceRecord) UnmarshalJSON(data []byte) error {
	type alias AttendanceRecord
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = StatusPresent
	}
	if a.CheckOutTime != nil && *a.CheckOutTime == "" {
		a.CheckOutTime = nil
	}
	*r = AttendanceRecord(a)
	return nil
}
