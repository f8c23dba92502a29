package service

import (
	"errors"
	"io"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/oss"
	"github.com/servswap/servswap_go_server/internal/repository"
)

type UserService struct {
	userRepo        *repository.UserRepository
	endorsementRepo *repository.EndorsementRepository
	swapRepo        *repository.SwapRepository
	ossClient       *oss.Client
	cfg             *config.Config
}

func NewUserService(
	userRepo *repository.UserRepository,
	endorsementRepo *repository.EndorsementRepository,
	swapRepo *repository.SwapRepository,
	ossClient *oss.Client,
	cfg *config.Config,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		endorsementRepo: endorsementRepo,
		swapRepo:        swapRepo,
		ossClient:       ossClient,
		cfg:             cfg,
	}
}

// GetProfile 获取公开资料，附带评价摘要与完成交换数
func (s *UserService) GetProfile(userID int64) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	count, avg, err := s.endorsementRepo.StatsForUser(userID)
	if err != nil {
		return nil, err
	}

	completed, err := s.swapRepo.CountCompletedForUser(userID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		User:             buildUserInfo(user),
		EndorsementCount: count,
		AverageRating:    avg,
		CompletedSwaps:   completed,
	}, nil
}

// UpdateProfile 更新个人资料
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 检查用户名是否已被占用
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = *req.Username
	}

	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return buildUserInfo(user), nil
}

// UploadAvatar 上传用户头像到 OSS 并更新头像 URL
func (s *UserService) UploadAvatar(userID int64, file io.Reader, filename string) (string, error) {
	if s.ossClient == nil {
		return "", errors.New("OSS 客户端未配置")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}

	avatarURL, err := s.ossClient.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"avatar_url": avatarURL,
	}); err != nil {
		return "", err
	}

	return avatarURL, nil
}
