package model

import (
	"time"
)

// Swap 状态
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusCompleted = "completed"
	SwapStatusDeclined  = "declined"
	SwapStatusCancelled = "cancelled"
)

// Swap 两个用户之间的服务交换提案。
// Provider 发起提案并提供己方服务，Receiver 在收件箱中收到提案，由其接受或拒绝。
type Swap struct {
	ID                     int64     `gorm:"primaryKey" json:"id"`
	ProviderID             int64     `gorm:"not null;index" json:"provider_id"`
	ReceiverID             int64     `gorm:"not null;index" json:"receiver_id"`
	ProviderService        string    `gorm:"size:200" json:"provider_service"` // 展示用，不做外键约束
	ReceiverService        string    `gorm:"size:200" json:"receiver_service"`
	Message                string    `gorm:"type:text" json:"message"`
	Status                 string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	ProviderMarkedComplete bool      `gorm:"default:false" json:"provider_marked_complete"`
	ReceiverMarkedComplete bool      `gorm:"default:false" json:"receiver_marked_complete"`
	Read                   bool      `gorm:"column:is_read;default:false" json:"read"` // 仅对接收方收件箱有意义
	CreatedAt              time.Time `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time `gorm:"index" json:"updated_at"`
}

func (Swap) TableName() string {
	return "swaps"
}

// IsTerminal 是否为终态（终态后禁止任何状态变更）
func (s *Swap) IsTerminal() bool {
	switch s.Status {
	case SwapStatusCompleted, SwapStatusDeclined, SwapStatusCancelled:
		return true
	}
	return false
}

// IsParty 是否为交换的参与方
func (s *Swap) IsParty(userID int64) bool {
	return s.ProviderID == userID || s.ReceiverID == userID
}

// OtherParty 返回对方的用户 ID
func (s *Swap) OtherParty(userID int64) int64 {
	if s.ProviderID == userID {
		return s.ReceiverID
	}
	return s.ProviderID
}
