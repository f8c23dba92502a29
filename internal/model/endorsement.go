package model

import (
	"time"
)

// Endorsement 交换完成后对对方的评价，(endorser, endorsee) 唯一
type Endorsement struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	EndorserID int64     `gorm:"not null;uniqueIndex:idx_endorser_endorsee" json:"endorser_id"`
	EndorseeID int64     `gorm:"not null;uniqueIndex:idx_endorser_endorsee;index" json:"endorsee_id"`
	SwapID     *int64    `gorm:"index" json:"swap_id,omitempty"`
	Rating     int       `gorm:"not null" json:"rating"` // 1-5
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`

	// 关联
	Endorser *User `gorm:"foreignKey:EndorserID" json:"endorser,omitempty"`
}

func (Endorsement) TableName() string {
	return "endorsements"
}
