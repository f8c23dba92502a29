package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepository) ListByUser(userID int64, page, pageSize int) ([]*model.Notification, int64, error) {
	var total int64
	var notifications []*model.Notification

	query := r.db.Model(&model.Notification{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("user_id = ?", userID).
		Preload("Actor").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

// MarkRead 标记单条通知已读，限定属主
func (r *NotificationRepository) MarkRead(id, userID int64) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) MarkAllRead(userID int64) error {
	return r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *NotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// DeleteReadBefore 清理指定时间之前的已读通知，返回删除行数
func (r *NotificationRepository) DeleteReadBefore(before time.Time) (int64, error) {
	result := r.db.Where("is_read = ? AND created_at < ?", true, before).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}
