package model

import (
	"time"
)

// Connection 状态
const (
	ConnectionStatusPending  = "pending"
	ConnectionStatusAccepted = "accepted"
	ConnectionStatusDeclined = "declined"
)

// Connection 用户之间的连接请求握手
type Connection struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	RequesterID int64     `gorm:"not null;index" json:"requester_id"`
	RecipientID int64     `gorm:"not null;index" json:"recipient_id"`
	Status      string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Connection) TableName() string {
	return "connections"
}
