package repository

import (
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/internal/model"
)

type EndorsementRepository struct {
	db *gorm.DB
}

func NewEndorsementRepository(db *gorm.DB) *EndorsementRepository {
	return &EndorsementRepository{db: db}
}

func (r *EndorsementRepository) Create(endorsement *model.Endorsement) error {
	return r.db.Create(endorsement).Error
}

// ExistsByPair 检查是否已存在该方向的评价
func (r *EndorsementRepository) ExistsByPair(endorserID, endorseeID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Endorsement{}).
		Where("endorser_id = ? AND endorsee_id = ?", endorserID, endorseeID).
		Count(&count).Error
	return count > 0, err
}

// ListForUser 列出用户收到的评价
func (r *EndorsementRepository) ListForUser(endorseeID int64, page, pageSize int) ([]*model.Endorsement, int64, error) {
	var total int64
	var endorsements []*model.Endorsement

	query := r.db.Model(&model.Endorsement{}).Where("endorsee_id = ?", endorseeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("endorsee_id = ?", endorseeID).
		Preload("Endorser").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&endorsements).Error
	return endorsements, total, err
}

// StatsForUser 统计用户收到的评价数量与平均评分
func (r *EndorsementRepository) StatsForUser(endorseeID int64) (int64, float64, error) {
	var result struct {
		Count int64
		Avg   float64
	}
	err := r.db.Model(&model.Endorsement{}).
		Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as avg").
		Where("endorsee_id = ?", endorseeID).
		Scan(&result).Error
	return result.Count, result.Avg, err
}
