package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nischal456/my-attendance-system-sub000/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var list []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ?", userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
