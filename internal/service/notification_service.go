package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nischal456/my-attendance-system-sub000/internal/dto"
	"github.com/Nischal456/my-attendance-system-sub000/internal/repository"
)

var ErrNotificationNotFound = errors.New("通知不存在")

// NotificationService 通知业务接口
// 通知的写入由考勤操作经异步派发器完成，这里只提供读取与已读标记
type NotificationService interface {
	ListMine(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) ListMine(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	items, total, err := s.repo.Notification.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		list = append(list, dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			IsRead:    n.IsRead,
			RelatedID: n.RelatedID,
			CreatedAt: n.CreatedAt,
		})
	}
	return list, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("标记通知已读失败", zap.Error(err))
		return err
	}
	return nil
}
