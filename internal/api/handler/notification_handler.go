package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Nischal456/my-attendance-system-sub000/internal/dto"
	"github.com/Nischal456/my-attendance-system-sub000/internal/service"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListMine 查询自己的通知
// GET /api/v1/notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.notificationSvc.ListMine(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MarkRead 标记通知已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 21001, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
