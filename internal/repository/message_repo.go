package repository

import (
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(msg *model.SwapMessage) error {
	return r.db.Create(msg).Error
}

// ListBySwap 按交换列出消息，时间升序
func (r *MessageRepository) ListBySwap(swapID int64, page, pageSize int) ([]*model.SwapMessage, int64, error) {
	var total int64
	var messages []*model.SwapMessage

	query := r.db.Model(&model.SwapMessage{}).Where("swap_id = ?", swapID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Sender").Order("created_at ASC").Offset(offset).Limit(pageSize).Find(&messages).Error
	return messages, total, err
}

// DeleteBySwap 删除交换的全部消息
func (r *MessageRepository) DeleteBySwap(swapID int64) error {
	return r.db.Where("swap_id = ?", swapID).Delete(&model.SwapMessage{}).Error
}
