package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/queue"
	"github.com/servswap/servswap_go_server/internal/repository"
)

var (
	ErrEndorseSelf       = errors.New("不能评价自己")
	ErrEndorseDuplicate  = errors.New("已经评价过该用户")
	ErrEndorseNoSwap     = errors.New("只能评价有已完成交换的用户")
)

type EndorsementService struct {
	endorsementRepo *repository.EndorsementRepository
	swapRepo        *repository.SwapRepository
	userRepo        *repository.UserRepository
	notifyQueue     *queue.Queue
	cfg             *config.Config
}

func NewEndorsementService(
	endorsementRepo *repository.EndorsementRepository,
	swapRepo *repository.SwapRepository,
	userRepo *repository.UserRepository,
	notifyQueue *queue.Queue,
	cfg *config.Config,
) *EndorsementService {
	return &EndorsementService{
		endorsementRepo: endorsementRepo,
		swapRepo:        swapRepo,
		userRepo:        userRepo,
		notifyQueue:     notifyQueue,
		cfg:             cfg,
	}
}

// Endorse 评价合作过的用户。每个方向只能评价一次，且双方之间必须有已完成的交换。
func (s *EndorsementService) Endorse(userID int64, req *dto.EndorseRequest) (*dto.EndorsementItem, error) {
	if req.EndorseeID == userID {
		return nil, ErrEndorseSelf
	}

	if _, err := s.userRepo.GetByID(req.EndorseeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	exists, err := s.endorsementRepo.ExistsByPair(userID, req.EndorseeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEndorseDuplicate
	}

	completed, err := s.swapRepo.CountCompletedBetween(userID, req.EndorseeID)
	if err != nil {
		return nil, err
	}
	if completed == 0 {
		return nil, ErrEndorseNoSwap
	}

	endorsement := &model.Endorsement{
		EndorserID: userID,
		EndorseeID: req.EndorseeID,
		SwapID:     req.SwapID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.endorsementRepo.Create(endorsement); err != nil {
		return nil, err
	}

	if s.notifyQueue != nil {
		err := s.notifyQueue.Push(context.Background(), &queue.NotifyMessage{
			UserID:    req.EndorseeID,
			ActorID:   &userID,
			Type:      model.NotifyEndorsement,
			SubjectID: &endorsement.ID,
			Content:   "你收到了一条新评价",
		})
		if err != nil {
			log.Printf("Endorsement %d: failed to enqueue notification: %v", endorsement.ID, err)
		}
	}

	endorser, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	endorsement.Endorser = endorser
	return toEndorsementItem(endorsement), nil
}

// ListForUser 列出用户收到的评价
func (s *EndorsementService) ListForUser(userID int64, page, pageSize int) ([]*dto.EndorsementItem, int64, error) {
	endorsements, total, err := s.endorsementRepo.ListForUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.EndorsementItem, 0, len(endorsements))
	for _, e := range endorsements {
		items = append(items, toEndorsementItem(e))
	}
	return items, total, nil
}

func toEndorsementItem(e *model.Endorsement) *dto.EndorsementItem {
	item := &dto.EndorsementItem{
		ID:        e.ID,
		Rating:    e.Rating,
		Comment:   e.Comment,
		CreatedAt: e.CreatedAt,
	}
	if e.Endorser != nil {
		item.Endorser = buildUserInfo(e.Endorser)
	}
	return item
}
