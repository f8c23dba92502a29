package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/pubsub"
	"github.com/servswap/servswap_go_server/internal/pkg/queue"
	"github.com/servswap/servswap_go_server/internal/repository"
)

type MessageService struct {
	messageRepo *repository.MessageRepository
	swapRepo    *repository.SwapRepository
	userRepo    *repository.UserRepository
	notifyQueue *queue.Queue
	publisher   *pubsub.Publisher
	cfg         *config.Config
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	swapRepo *repository.SwapRepository,
	userRepo *repository.UserRepository,
	notifyQueue *queue.Queue,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		swapRepo:    swapRepo,
		userRepo:    userRepo,
		notifyQueue: notifyQueue,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Send 在交换会话中发消息，仅限双方
func (s *MessageService) Send(swapID, userID int64, req *dto.SendMessageRequest) (*dto.MessageItem, error) {
	swap, err := s.swapForParty(swapID, userID)
	if err != nil {
		return nil, err
	}

	msg := &model.SwapMessage{
		SwapID:   swapID,
		SenderID: &userID,
		Content:  req.Content,
	}
	if err := s.messageRepo.Create(msg); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	msg.Sender = sender

	item := toMessageItem(msg)
	other := swap.OtherParty(userID)

	// 对方在线则实时推送，离线依赖通知
	if s.publisher != nil {
		if err := s.publisher.PublishTo(context.Background(), other, pubsub.EventChatMessage, item); err != nil {
			log.Printf("Swap %d: failed to publish chat message: %v", swapID, err)
		}
	}

	if s.notifyQueue != nil {
		err := s.notifyQueue.Push(context.Background(), &queue.NotifyMessage{
			UserID:    other,
			ActorID:   &userID,
			Type:      model.NotifyNewMessage,
			SubjectID: &swapID,
			Content:   sender.Username + " 给你发来一条消息",
		})
		if err != nil {
			log.Printf("Swap %d: failed to enqueue message notification: %v", swapID, err)
		}
	}

	return item, nil
}

// History 会话消息历史（含系统消息），按时间升序
func (s *MessageService) History(swapID, userID int64) ([]*dto.MessageItem, error) {
	if _, err := s.swapForParty(swapID, userID); err != nil {
		return nil, err
	}

	messages, _, err := s.messageRepo.ListBySwap(swapID, 1, -1)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MessageItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, toMessageItem(msg))
	}
	return items, nil
}

func (s *MessageService) swapForParty(swapID, userID int64) (*model.Swap, error) {
	swap, err := s.swapRepo.GetByID(swapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	if !swap.IsParty(userID) {
		return nil, ErrSwapPermission
	}
	return swap, nil
}

func toMessageItem(msg *model.SwapMessage) *dto.MessageItem {
	item := &dto.MessageItem{
		ID:        msg.ID,
		SwapID:    msg.SwapID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		System:    msg.IsSystem(),
		CreatedAt: msg.CreatedAt,
	}
	if msg.Sender != nil {
		item.Sender = buildUserInfo(msg.Sender)
	}
	return item
}
