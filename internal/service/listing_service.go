package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/repository"
)

var (
	ErrListingNotFound   = errors.New("服务不存在")
	ErrListingPermission = errors.New("无权操作此服务")
)

type ListingService struct {
	listingRepo *repository.ListingRepository
	cfg         *config.Config
}

func NewListingService(listingRepo *repository.ListingRepository, cfg *config.Config) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		cfg:         cfg,
	}
}

// Create 发布服务
func (s *ListingService) Create(userID int64, req *dto.CreateListingRequest) (*dto.ListingItem, error) {
	listing := &model.Listing{
		UserID:      userID,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		AudioURL:    req.AudioURL,
		Active:      true,
	}

	if err := s.listingRepo.Create(listing); err != nil {
		return nil, err
	}

	return toListingItem(listing), nil
}

// Get 查看服务详情
func (s *ListingService) Get(listingID int64) (*dto.ListingItem, error) {
	listing, err := s.listingRepo.GetByIDWithUser(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return toListingItem(listing), nil
}

// List 浏览/搜索上架的服务
func (s *ListingService) List(category, keyword string, page, pageSize int) ([]*dto.ListingItem, int64, error) {
	listings, total, err := s.listingRepo.List(page, pageSize, category, keyword)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ListingItem, 0, len(listings))
	for _, listing := range listings {
		items = append(items, toListingItem(listing))
	}
	return items, total, nil
}

// ListByUser 列出某用户发布的服务
func (s *ListingService) ListByUser(userID int64) ([]*dto.ListingItem, error) {
	listings, err := s.listingRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ListingItem, 0, len(listings))
	for _, listing := range listings {
		items = append(items, toListingItem(listing))
	}
	return items, nil
}

// Update 修改服务，仅发布者本人
func (s *ListingService) Update(listingID, userID int64, req *dto.UpdateListingRequest) (*dto.ListingItem, error) {
	listing, err := s.getOwned(listingID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Category != nil {
		listing.Category = *req.Category
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.ImageURL != nil {
		listing.ImageURL = *req.ImageURL
	}
	if req.AudioURL != nil {
		listing.AudioURL = *req.AudioURL
	}
	if req.Active != nil {
		listing.Active = *req.Active
	}

	if err := s.listingRepo.Update(listing); err != nil {
		return nil, err
	}
	return toListingItem(listing), nil
}

// Delete 下架并删除服务，仅发布者本人
func (s *ListingService) Delete(listingID, userID int64) error {
	if _, err := s.getOwned(listingID, userID); err != nil {
		return err
	}
	return s.listingRepo.Delete(listingID)
}

func (s *ListingService) getOwned(listingID, userID int64) (*model.Listing, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.UserID != userID {
		return nil, ErrListingPermission
	}
	return listing, nil
}

func toListingItem(listing *model.Listing) *dto.ListingItem {
	item := &dto.ListingItem{
		ID:          listing.ID,
		Title:       listing.Title,
		Category:    listing.Category,
		Description: listing.Description,
		ImageURL:    listing.ImageURL,
		AudioURL:    listing.AudioURL,
		Active:      listing.Active,
		CreatedAt:   listing.CreatedAt,
	}
	if listing.User != nil {
		item.Owner = buildUserInfo(listing.User)
	}
	return item
}
