package service

import (
	"errors"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/repository"
)

var ErrNotificationNotFound = errors.New("通知不存在")

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	cfg              *config.Config
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, cfg *config.Config) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		cfg:              cfg,
	}
}

// List 用户通知列表，按时间倒序
func (s *NotificationService) List(userID int64, page, pageSize int) ([]*dto.NotificationItem, int64, error) {
	notifications, total, err := s.notificationRepo.ListByUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		item := &dto.NotificationItem{
			ID:        n.ID,
			Type:      n.Type,
			SubjectID: n.SubjectID,
			Content:   n.Content,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
		if n.Actor != nil {
			item.Actor = buildUserInfo(n.Actor)
		}
		items = append(items, item)
	}
	return items, total, nil
}

// MarkRead 标记单条通知已读
func (s *NotificationService) MarkRead(notificationID, userID int64) error {
	rows, err := s.notificationRepo.MarkRead(notificationID, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 标记全部已读
func (s *NotificationService) MarkAllRead(userID int64) error {
	return s.notificationRepo.MarkAllRead(userID)
}

// UnreadCount 未读数
func (s *NotificationService) UnreadCount(userID int64) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}
