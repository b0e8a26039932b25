package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/model"
)

// ErrExportGenerateFail 生成导出文件失败
var ErrExportGenerateFail = errors.New("生成导出文件失败")

// 导出文件 MIME 类型
const (
	MIMETypeCSV  = "text/csv; charset=utf-8"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RecordReader 报表只读依赖：账本的查询面
type RecordReader interface {
	AllRecords() []model.AttendanceRecord
}

// ReportService 出勤报表与导出业务接口
//
// 设计说明：
//   - 报表按日期倒序分组，from/to 为闭区间，均为空时不过滤
//   - Limit > 0 时只保留过滤后最近的 Limit 个日期
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置响应头
type ReportService interface {
	BuildReport(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error)
	ExportCSV(ctx context.Context, req *dto.ReportRequest) (*bytes.Buffer, string, error)
	ExportXLSX(ctx context.Context, req *dto.ReportRequest) (*bytes.Buffer, string, error)
}

type reportService struct {
	records RecordReader
	locale  ReportLocale
	now     func() time.Time
	logger  *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(records RecordReader, locale string, logger *zap.Logger) ReportService {
	return &reportService{
		records: records,
		locale:  LocaleFor(locale),
		now:     time.Now,
		logger:  logger,
	}
}

// ────────────────────── BuildReport ──────────────────────

func (s *reportService) BuildReport(_ context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error) {
	dates, groups, err := s.selectDates(req)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReportResponse{
		From:       req.From,
		To:         req.To,
		TotalDates: len(dates),
		Dates:      make([]dto.ReportDateGroup, 0, len(dates)),
	}
	for _, d := range dates {
		rows := ToExportRows([]string{d}, groups, s.locale)
		group := dto.ReportDateGroup{Date: d, Rows: make([]dto.ReportRow, 0, len(rows))}
		for _, r := range rows {
			group.Rows = append(group.Rows, dto.ReportRow{
				Name:       r.Name,
				Date:       r.Date,
				CheckIn:    r.CheckIn,
				CheckOut:   r.CheckOut,
				WorkedTime: r.Worked,
				Status:     r.Status,
			})
		}
		resp.Dates = append(resp.Dates, group)
	}
	return resp, nil
}

// ────────────────────── ExportCSV ──────────────────────

func (s *reportService) ExportCSV(_ context.Context, req *dto.ReportRequest) (*bytes.Buffer, string, error) {
	dates, groups, err := s.selectDates(req)
	if err != nil {
		return nil, "", err
	}
	rows := ToExportRows(dates, groups, s.locale)

	buf := new(bytes.Buffer)
	if err := EncodeCSV(buf, s.locale.Headers, rows); err != nil {
		s.logger.Error("写入 CSV 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("导出 CSV", zap.Int("dates", len(dates)), zap.Int("rows", len(rows)))
	return buf, s.filename("csv"), nil
}

// ────────────────────── ExportXLSX ──────────────────────

func (s *reportService) ExportXLSX(_ context.Context, req *dto.ReportRequest) (*bytes.Buffer, string, error) {
	dates, groups, err := s.selectDates(req)
	if err != nil {
		return nil, "", err
	}
	rows := ToExportRows(dates, groups, s.locale)

	f := excelize.NewFile()
	defer f.Close()

	sheet := s.locale.SheetName
	idx, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	_ = f.DeleteSheet("Sheet1")

	widths := []float64{14, 12, 12, 12, 14, 12}
	for i, w := range widths {
		col := colName(i)
		_ = f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range s.locale.Headers {
		_ = f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	_ = f.SetCellStyle(sheet, cell(colName(0), 1), cell(colName(len(s.locale.Headers)-1), 1), headerStyle)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 数据行
	for r, row := range rows {
		for c, v := range row.Fields() {
			_ = f.SetCellValue(sheet, cell(colName(c), r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("导出 Excel", zap.Int("dates", len(dates)), zap.Int("rows", len(rows)))
	return buf, s.filename("xlsx"), nil
}

// ── 内部辅助方法 ──

// selectDates 分组 → 倒序 → 区间过滤 → 截取最近 Limit 个日期
func (s *reportService) selectDates(req *dto.ReportRequest) ([]string, DateGroups, error) {
	rng, err := ParseReportRange(req.From, req.To)
	if err != nil {
		return nil, nil, err
	}

	groups := GroupByDate(s.records.AllRecords())
	dates := FilterByRange(SortedDatesDescending(groups), rng)
	if req.Limit > 0 && len(dates) > req.Limit {
		dates = dates[:req.Limit]
	}
	return dates, groups, nil
}

// filename attendance_<导出日期>.<ext>
func (s *reportService) filename(ext string) string {
	date, _ := LocalStamp(s.now())
	return fmt.Sprintf("attendance_%s.%s", date, ext)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
