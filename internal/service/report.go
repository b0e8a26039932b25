package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"attendance-ledger/internal/model"
)

// ── 报表模块业务错误 ──

var (
	ErrReportDateInvalid  = errors.New("报表日期格式应为 YYYY-MM-DD")
	ErrReportRangeInvalid = errors.New("报表结束日期早于开始日期")
)

// Placeholder 缺失的签退时间与工时统一显示为 "-"
const Placeholder = "-"

// DateGroups 日期 → 该日记录（保持账本插入顺序）
type DateGroups map[string][]model.AttendanceRecord

// GroupByDate 按日期分组
func GroupByDate(records []model.AttendanceRecord) DateGroups {
	groups := make(DateGroups)
	for _, r := range records {
		groups[r.Date] = append(groups[r.Date], r)
	}
	return groups
}

// SortedDatesDescending YYYY-MM-DD 的字典序倒序即时间倒序
func SortedDatesDescending(groups DateGroups) []string {
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// DateRange 闭区间过滤条件，空字符串表示该端不限
type DateRange struct {
	From string
	To   string
}

// ParseReportRange 校验并构造 DateRange
func ParseReportRange(rawFrom, rawTo string) (DateRange, error) {
	from := strings.TrimSpace(rawFrom)
	to := strings.TrimSpace(rawTo)

	if from != "" {
		if _, err := time.Parse(model.DateLayout, from); err != nil {
			return DateRange{}, ErrReportDateInvalid
		}
	}
	if to != "" {
		if _, err := time.Parse(model.DateLayout, to); err != nil {
			return DateRange{}, ErrReportDateInvalid
		}
	}
	if from != "" && to != "" && to < from {
		return DateRange{}, ErrReportRangeInvalid
	}
	return DateRange{From: from, To: to}, nil
}

// FilterByRange 保持原有顺序返回落在区间内的日期
// 两端都不限时原样返回全部日期；结果为空只表示区间内没有数据
func FilterByRange(dates []string, r DateRange) []string {
	result := make([]string, 0, len(dates))
	for _, d := range dates {
		if r.From != "" && d < r.From {
			continue
		}
		if r.To != "" && d > r.To {
			continue
		}
		result = append(result, d)
	}
	return result
}

// WorkedDuration 工作时长
type WorkedDuration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ComputeWorkedDuration 仅在签到与签退时间都存在时计算
// 不处理跨夜：签退早于签到时记为 0
func ComputeWorkedDuration(r *model.AttendanceRecord) (WorkedDuration, bool) {
	if r.CheckInTime == "" || r.IsOpen() {
		return WorkedDuration{}, false
	}
	in, err := time.Parse(model.TimeLayout, r.CheckInTime)
	if err != nil {
		return WorkedDuration{}, false
	}
	out, err := time.Parse(model.TimeLayout, *r.CheckOutTime)
	if err != nil {
		return WorkedDuration{}, false
	}

	diff := out.Sub(in)
	if diff < 0 {
		diff = 0
	}
	return WorkedDuration{
		Hours:   int(diff / time.Hour),
		Minutes: int((diff % time.Hour) / time.Minute),
	}, true
}

// ── 导出 ──

// ExportRow 导出表格中的一行（已本地化）
type ExportRow struct {
	Name     string
	Date     string
	CheckIn  string
	CheckOut string
	Worked   string
	Status   string
}

// Fields 按表头顺序返回各列
func (r ExportRow) Fields() []string {
	return []string{r.Name, r.Date, r.CheckIn, r.CheckOut, r.Worked, r.Status}
}

// ReportLocale 表头、状态与时长的本地化文案
type ReportLocale struct {
	Headers        []string
	Statuses       map[string]string
	DurationFormat string
	SheetName      string
}

var reportLocales = map[string]ReportLocale{
	"ko": {
		Headers: []string{"이름", "날짜", "출근 시간", "퇴근 시간", "근무 시간", "상태"},
		Statuses: map[string]string{
			model.StatusPresent:      "출근",
			model.StatusBusinessTrip: "출장",
		},
		DurationFormat: "%d시간 %d분",
		SheetName:      "출퇴근기록",
	},
	"en": {
		Headers: []string{"Name", "Date", "Check-in", "Check-out", "Worked", "Status"},
		Statuses: map[string]string{
			model.StatusPresent:      "Present",
			model.StatusBusinessTrip: "Business trip",
		},
		DurationFormat: "%dh %dm",
		SheetName:      "Attendance",
	},
}

// LocaleFor 未知 locale 回退到 ko
func LocaleFor(locale string) ReportLocale {
	if l, ok := reportLocales[locale]; ok {
		return l
	}
	return reportLocales["ko"]
}

// FormatDuration 按 locale 渲染时长
func (l ReportLocale) FormatDuration(d WorkedDuration) string {
	return fmt.Sprintf(l.DurationFormat, d.Hours, d.Minutes)
}

// StatusLabel 未知状态原样输出
func (l ReportLocale) StatusLabel(status string) string {
	if label, ok := l.Statuses[status]; ok {
		return label
	}
	return status
}

// ToExportRows 日期按传入顺序，同日内按账本插入顺序
func ToExportRows(dates []string, groups DateGroups, locale ReportLocale) []ExportRow {
	rows := make([]ExportRow, 0)
	for _, d := range dates {
		for i := range groups[d] {
			rows = append(rows, toExportRow(&groups[d][i], locale))
		}
	}
	return rows
}

func toExportRow(r *model.AttendanceRecord, locale ReportLocale) ExportRow {
	row := ExportRow{
		Name:     r.UserName,
		Date:     r.Date,
		CheckIn:  r.CheckInTime,
		CheckOut: Placeholder,
		Worked:   Placeholder,
		Status:   locale.StatusLabel(r.Status),
	}
	if row.CheckIn == "" {
		row.CheckIn = Placeholder
	}
	if !r.IsOpen() {
		row.CheckOut = *r.CheckOutTime
	}
	if d, ok := ComputeWorkedDuration(r); ok {
		row.Worked = locale.FormatDuration(d)
	}
	return row
}

// csvBOM UTF-8 字节序标记，便于表格软件识别编码
const csvBOM = "\uFEFF"

// EncodeCSV 写出 BOM、表头与数据行；每个字段都加双引号，行尾 CRLF
func EncodeCSV(w io.Writer, headers []string, rows []ExportRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvBOM); err != nil {
		return err
	}
	if err := writeQuotedLine(bw, headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeQuotedLine(bw, row.Fields()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeQuotedLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}
