package repository

import (
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/internal/model"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(listing *model.Listing) error {
	return r.db.Create(listing).Error
}

func (r *ListingRepository) GetByID(id int64) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) GetByIDWithUser(id int64) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.Preload("User").Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// List 浏览市场：仅展示 active 条目，支持分类过滤和关键词搜索
func (r *ListingRepository) List(page, pageSize int, category, keyword string) ([]*model.Listing, int64, error) {
	var total int64
	var listings []*model.Listing

	query := r.db.Model(&model.Listing{}).Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&listings).Error
	return listings, total, err
}

// ListByUser 列出用户的全部条目（含未激活）
func (r *ListingRepository) ListByUser(userID int64) ([]*model.Listing, error) {
	var listings []*model.Listing
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&listings).Error
	return listings, err
}

func (r *ListingRepository) Update(listing *model.Listing) error {
	return r.db.Save(listing).Error
}

func (r *ListingRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&model.Listing{}).Error
}
