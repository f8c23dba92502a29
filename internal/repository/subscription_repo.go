package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/servswap/servswap_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert 按主键（服务商订阅 ID）写入或覆盖镜像
func (r *SubscriptionRepository) Upsert(sub *model.Subscription) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByUserID 列出用户的所有订阅镜像
func (r *SubscriptionRepository) ListByUserID(userID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// UpdateFields 局部更新镜像字段（read-repair 用）
func (r *SubscriptionRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

func (r *SubscriptionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Subscription{}).Error
}
