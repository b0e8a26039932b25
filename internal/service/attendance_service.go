package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"attendance-ledger/internal/model"
)

// ── 出勤模块业务错误 ──

var (
	ErrAlreadyCheckedIn = errors.New("今日已签到，请先签退")
	ErrNoOpenRecord     = errors.New("今日没有未签退的签到记录")
	ErrOutOfRange       = errors.New("当前位置不在打卡范围内")
	ErrInvalidDate      = errors.New("日期格式应为 YYYY-MM-DD")
	ErrInvalidTime      = errors.New("时间格式应为 HH:MM:SS")
)

// TodayStatus 某用户在某日的出勤状态
type TodayStatus string

const (
	TodayNotCheckedIn TodayStatus = "not_checked_in"
	TodayCheckedIn    TodayStatus = "checked_in"
	TodayCheckedOut   TodayStatus = "checked_out"
)

// CheckInInput 签到参数；Decision 须由调用方在调用前解析完成
type CheckInInput struct {
	UserID       int
	UserName     string
	Date         string // YYYY-MM-DD
	Time         string // HH:MM:SS
	BusinessTrip bool
	Decision     LocationDecision
}

// CheckOutInput 签退参数
type CheckOutInput struct {
	UserID       int
	Date         string
	Time         string
	BusinessTrip bool
	Decision     LocationDecision
}

// AttendanceResult 签到/签退结果
// LocationUnknown 为 true 表示未取得定位，操作按放行处理
type AttendanceResult struct {
	Record          model.AttendanceRecord
	LocationUnknown bool
}

// AttendanceService 出勤账本业务接口
type AttendanceService interface {
	CheckIn(ctx context.Context, in *CheckInInput) (*AttendanceResult, error)
	CheckOut(ctx context.Context, in *CheckOutInput) (*AttendanceResult, error)
	// RecordsFor 按插入顺序返回该用户的全部记录
	RecordsFor(userID int) []model.AttendanceRecord
	// AllRecords 按插入顺序返回账本全部记录的副本
	AllRecords() []model.AttendanceRecord
	// RecentRecords 按日期倒序返回该用户最近 limit 条记录
	RecentRecords(userID int, limit int) []model.AttendanceRecord
	TodayStatus(userID int, date string) TodayStatus
	DeleteAllFor(ctx context.Context, userID int) error
}

type attendanceService struct {
	store  *LedgerStore
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(store *LedgerStore, logger *zap.Logger) AttendanceService {
	return &attendanceService{store: store, logger: logger}
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, in *CheckInInput) (*AttendanceResult, error) {
	if err := validateStamp(in.Date, in.Time); err != nil {
		return nil, err
	}

	var result *AttendanceResult
	err := s.store.Mutate(ctx, func(tx *LedgerTx) error {
		if findUser(tx.Users, in.UserID) < 0 {
			return ErrUserNotFound
		}
		if err := checkLocation(in.BusinessTrip, in.Decision); err != nil {
			return err
		}
		if findOpenRecord(tx.Records, in.UserID, in.Date) >= 0 {
			return ErrAlreadyCheckedIn
		}

		status := model.StatusPresent
		if in.BusinessTrip {
			status = model.StatusBusinessTrip
		}
		rec := model.AttendanceRecord{
			UserID:      in.UserID,
			UserName:    in.UserName,
			Date:        in.Date,
			CheckInTime: in.Time,
			Status:      status,
		}
		tx.Records = append(tx.Records, rec)
		tx.TouchRecords()

		result = &AttendanceResult{
			Record:          rec,
			LocationUnknown: !in.BusinessTrip && in.Decision == LocationUnknown,
		}
		return nil
	})
	if err != nil {
		s.logRejected("签到被拒绝", in.UserID, in.Date, err)
		return nil, err
	}

	s.logger.Info("签到成功",
		zap.Int("user_id", in.UserID),
		zap.String("date", in.Date),
		zap.String("time", in.Time),
		zap.String("status", result.Record.Status),
		zap.Bool("location_unknown", result.LocationUnknown),
	)
	return result, nil
}

// ────────────────────── CheckOut ──────────────────────

func (s *attendanceService) CheckOut(ctx context.Context, in *CheckOutInput) (*AttendanceResult, error) {
	if err := validateStamp(in.Date, in.Time); err != nil {
		return nil, err
	}

	var result *AttendanceResult
	err := s.store.Mutate(ctx, func(tx *LedgerTx) error {
		if err := checkLocation(in.BusinessTrip, in.Decision); err != nil {
			return err
		}
		idx := findOpenRecord(tx.Records, in.UserID, in.Date)
		if idx < 0 {
			return ErrNoOpenRecord
		}

		checkOut := in.Time
		tx.Records[idx].CheckOutTime = &checkOut
		tx.TouchRecords()

		result = &AttendanceResult{
			Record:          tx.Records[idx],
			LocationUnknown: !in.BusinessTrip && in.Decision == LocationUnknown,
		}
		return nil
	})
	if err != nil {
		s.logRejected("签退被拒绝", in.UserID, in.Date, err)
		return nil, err
	}

	s.logger.Info("签退成功",
		zap.Int("user_id", in.UserID),
		zap.String("date", in.Date),
		zap.String("time", in.Time),
		zap.Bool("location_unknown", result.LocationUnknown),
	)
	return result, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *attendanceService) RecordsFor(userID int) []model.AttendanceRecord {
	result := make([]model.AttendanceRecord, 0)
	s.store.View(func(_ []model.User, records []model.AttendanceRecord) {
		for _, r := range records {
			if r.UserID == userID {
				result = append(result, r)
			}
		}
	})
	return result
}

func (s *attendanceService) AllRecords() []model.AttendanceRecord {
	var result []model.AttendanceRecord
	s.store.View(func(_ []model.User, records []model.AttendanceRecord) {
		result = append(make([]model.AttendanceRecord, 0, len(records)), records...)
	})
	return result
}

func (s *attendanceService) RecentRecords(userID int, limit int) []model.AttendanceRecord {
	records := s.RecordsFor(userID)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

func (s *attendanceService) TodayStatus(userID int, date string) TodayStatus {
	status := TodayNotCheckedIn
	s.store.View(func(_ []model.User, records []model.AttendanceRecord) {
		status = todayStatusOf(records, userID, date)
	})
	return status
}

// ────────────────────── DeleteAllFor ──────────────────────

func (s *attendanceService) DeleteAllFor(ctx context.Context, userID int) error {
	removed := 0
	err := s.store.Mutate(ctx, func(tx *LedgerTx) error {
		removed = deleteRecordsFor(tx, userID)
		return nil
	})
	if err != nil {
		s.logger.Error("删除出勤记录失败", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Info("已删除用户全部出勤记录", zap.Int("user_id", userID), zap.Int("removed", removed))
	return nil
}

// ── 内部辅助方法 ──

func (s *attendanceService) logRejected(msg string, userID int, date string, err error) {
	fields := []zap.Field{zap.Int("user_id", userID), zap.String("date", date), zap.Error(err)}
	if errors.Is(err, ErrPersistFailed) {
		s.logger.Error(msg, fields...)
		return
	}
	s.logger.Info(msg, fields...)
}

// checkLocation 出差时不校验位置；定位未知时放行
func checkLocation(businessTrip bool, decision LocationDecision) error {
	if !businessTrip && decision == LocationOutOfRange {
		return ErrOutOfRange
	}
	return nil
}

func validateStamp(date, clock string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(model.TimeLayout, clock); err != nil {
		return ErrInvalidTime
	}
	return nil
}

// findOpenRecord 返回 (userID, date) 最近一条未签退记录的下标，不存在返回 -1
func findOpenRecord(records []model.AttendanceRecord, userID int, date string) int {
	for i := len(records) - 1; i >= 0; i-- {
		r := &records[i]
		if r.UserID == userID && r.Date == date && r.IsOpen() {
			return i
		}
	}
	return -1
}

// todayStatusOf 以当日最后一条记录为准
func todayStatusOf(records []model.AttendanceRecord, userID int, date string) TodayStatus {
	for i := len(records) - 1; i >= 0; i-- {
		r := &records[i]
		if r.UserID != userID || r.Date != date {
			continue
		}
		if r.IsOpen() {
			return TodayCheckedIn
		}
		return TodayCheckedOut
	}
	return TodayNotCheckedIn
}

// deleteRecordsFor 原地过滤该用户的记录，返回删除条数
func deleteRecordsFor(tx *LedgerTx, userID int) int {
	kept := tx.Records[:0]
	for _, r := range tx.Records {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	removed := len(tx.Records) - len(kept)
	if removed > 0 {
		tx.Records = kept
		tx.TouchRecords()
	}
	return removed
}

// LocalStamp 将时间转换为本地挂钟的日期与时间字符串
func LocalStamp(now time.Time) (date string, clock string) {
	local := now.Local()
	return local.Format(model.DateLayout), local.Format(model.TimeLayout)
}
