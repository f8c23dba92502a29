package model

import (
	"time"
)

// Listing 用户发布的可交换服务
type Listing struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Category    string    `gorm:"size:50;index" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	AudioURL    string    `gorm:"size:500" json:"audio_url"` // 语音介绍
	Active      bool      `gorm:"default:true;index" json:"active"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}
