package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	reportSvc service.ReportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(reportSvc service.ReportService) *ExportHandler {
	return &ExportHandler{reportSvc: reportSvc}
}

// ExportCSV 导出出勤记录 CSV（管理员）
// GET /api/v1/export/attendance.csv?from=&to=
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	h.export(c, h.reportSvc.ExportCSV, service.MIMETypeCSV)
}

// ExportXLSX 导出出勤记录 Excel（管理员）
// GET /api/v1/export/attendance.xlsx?from=&to=
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, h.reportSvc.ExportXLSX, service.MIMETypeXLSX)
}

type exportFunc func(ctx context.Context, req *dto.ReportRequest) (*bytes.Buffer, string, error)

func (h *ExportHandler) export(c *gin.Context, fn exportFunc, contentType string) {
	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := fn(c.Request.Context(), &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
