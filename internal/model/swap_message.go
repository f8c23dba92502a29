package model

import (
	"time"
)

// SwapMessage 交换会话消息，SenderID 为空表示系统消息
type SwapMessage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SwapID    int64     `gorm:"not null;index" json:"swap_id"`
	SenderID  *int64    `gorm:"index" json:"sender_id,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// 关联
	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (SwapMessage) TableName() string {
	return "swap_messages"
}

// IsSystem 是否为系统消息
func (m *SwapMessage) IsSystem() bool {
	return m.SenderID == nil
}
