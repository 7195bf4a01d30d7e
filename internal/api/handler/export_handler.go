package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nischal456/my-attendance-system-sub000/internal/dto"
	"github.com/Nischal456/my-attendance-system-sub000/internal/service"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器（仅管理员路由）
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWorkHours 导出月度工时汇总为 Excel
// GET /api/v1/export/work-hours?year=&month=
func (h *ExportHandler) ExportWorkHours(c *gin.Context) {
	var req dto.WorkHoursRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportWorkHours(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNoData):
			response.NotFound(c, 22001, "该月份没有可导出的工时数据")
		case errors.Is(err, service.ErrExportGenerateFail):
			response.InternalError(c)
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
