package dto

// ── 报表模块 DTO ──

// ReportRequest 报表/导出查询参数，from/to 为空表示不限
type ReportRequest struct {
	From  string `form:"from"  binding:"omitempty,datetime=2006-01-02"`
	To    string `form:"to"    binding:"omitempty,datetime=2006-01-02"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=366"`
}

// ReportRow 报表中的一行
type ReportRow struct {
	Name       string `json:"name"`
	Date       string `json:"date"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	WorkedTime string `json:"worked_time"`
	Status     string `json:"status"`
}

// ReportDateGroup 某一日期下的记录
type ReportDateGroup struct {
	Date string      `json:"date"`
	Rows []ReportRow `json:"rows"`
}

// ReportResponse 按日期倒序分组的报表
type ReportResponse struct {
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	TotalDates int               `json:"total_dates"`
	Dates      []ReportDateGroup `json:"dates"`
}
