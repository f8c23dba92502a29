package model

import (
	"strings"
	"time"
)

// 服务商侧订阅标识前缀
const SubscriptionIDPrefix = "sub_"

// 认证徽章套餐的特殊 plan id
const PlanVerification = "verification"

// Subscription 本地订阅镜像。服务商是 cancel_at_period_end / current_period_end 的
// 事实来源，读取时发现不一致则覆盖本地（read-repair）。
// ID 为服务商订阅标识（sub_ 前缀）；手工开通的订阅用用户 ID 字符串占位。
type Subscription struct {
	ID                string    `gorm:"primaryKey;size:100" json:"id"`
	UserID            int64     `gorm:"not null;index" json:"user_id"`
	CustomerID        string    `gorm:"size:100;index" json:"customer_id"`
	PlanID            string    `gorm:"size:50;not null" json:"plan_id"`
	Status            string    `gorm:"size:20;default:active" json:"status"` // 服务商状态镜像
	CancelAtPeriodEnd bool      `gorm:"default:false" json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64     `json:"current_period_end"` // epoch 秒
	Interval          string    `gorm:"size:10" json:"interval"` // month, year
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsProviderLinked 是否为服务商托管的订阅（而非手工占位）
func (s *Subscription) IsProviderLinked() bool {
	return strings.HasPrefix(s.ID, SubscriptionIDPrefix)
}

// IsVerification 是否为认证徽章订阅
func (s *Subscription) IsVerification() bool {
	return s.PlanID == PlanVerification
}
