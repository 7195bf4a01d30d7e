package dto

import "time"

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表请求
type NotificationListRequest struct {
	PaginationRequest
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	RelatedID *string   `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
