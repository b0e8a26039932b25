package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/response"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
	dateLimit int
}

// NewReportHandler 创建 ReportHandler
// dateLimit 为未指定区间和 limit 时默认展示的最近日期数
func NewReportHandler(reportSvc service.ReportService, dateLimit int) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, dateLimit: dateLimit}
}

// GetReport 按日期倒序分组的出勤报表（管理员）
// GET /api/v1/reports?from=2024-01-01&to=2024-01-31&limit=7
func (h *ReportHandler) GetReport(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Limit == 0 && req.From == "" && req.To == "" {
		req.Limit = h.dateLimit
	}

	result, err := h.reportSvc.BuildReport(c.Request.Context(), &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportDateInvalid):
		response.BadRequest(c, 40001, "报表日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrReportRangeInvalid):
		response.BadRequest(c, 40002, "报表结束日期早于开始日期")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 50002, "生成导出文件失败")
	default:
		response.InternalError(c)
	}
}
