package model

import (
	"time"
)

// 通知类型
const (
	NotifySwapProposed       = "swap_proposed"
	NotifySwapAccepted       = "swap_accepted"
	NotifySwapDeclined       = "swap_declined"
	NotifySwapCancelled      = "swap_cancelled"
	NotifySwapMarkedComplete = "swap_marked_complete"
	NotifySwapCompleted      = "swap_completed"
	NotifyConnectionRequest  = "connection_request"
	NotifyConnectionAccepted = "connection_accepted"
	NotifyEndorsement        = "endorsement"
	NotifyNewMessage         = "new_message"
)

// Notification 站内通知
type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	Type      string    `gorm:"size:30;not null" json:"type"`
	SubjectID *int64    `json:"subject_id,omitempty"` // swap/connection/endorsement 的 ID
	Content   string    `gorm:"size:500" json:"content"`
	Read      bool      `gorm:"column:is_read;default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// 关联
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
