package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/pubsub"
	"github.com/servswap/servswap_go_server/internal/pkg/queue"
	"github.com/servswap/servswap_go_server/internal/repository"
)

var (
	ErrSwapNotFound    = errors.New("交换不存在")
	ErrSwapPermission  = errors.New("无权操作此交换")
	ErrSwapSelf        = errors.New("不能与自己发起交换")
	ErrSwapNotPending  = errors.New("交换已被处理")
	ErrSwapNotAccepted = errors.New("交换尚未达成，无法标记完成")
	ErrSwapTerminal    = errors.New("交换已结束，无法再变更状态")
)

type SwapService struct {
	swapRepo    *repository.SwapRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	notifyQueue *queue.Queue
	publisher   *pubsub.Publisher
	cfg         *config.Config
}

func NewSwapService(
	swapRepo *repository.SwapRepository,
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	notifyQueue *queue.Queue,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *SwapService {
	return &SwapService{
		swapRepo:    swapRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifyQueue: notifyQueue,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Propose 发起交换提案。发起方作为 provider，提供 provider_service，
// 向 receiver 请求 receiver_service。
func (s *SwapService) Propose(userID int64, req *dto.ProposeSwapRequest) (*dto.SwapItem, error) {
	if req.ReceiverID == userID {
		return nil, ErrSwapSelf
	}

	receiver, err := s.userRepo.GetByID(req.ReceiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	swap := &model.Swap{
		ProviderID:      userID,
		ReceiverID:      req.ReceiverID,
		ProviderService: req.ProviderService,
		ReceiverService: req.ReceiverService,
		Message:         req.Message,
		Status:          model.SwapStatusPending,
	}

	if err := s.swapRepo.Create(swap); err != nil {
		return nil, err
	}

	s.notify(receiver.ID, userID, model.NotifySwapProposed, swap.ID,
		fmt.Sprintf("你收到了一个新的交换提案：%s ⇄ %s", swap.ProviderService, swap.ReceiverService))

	return s.toItem(swap, userID), nil
}

// Get 查看交换详情，仅参与方可见
func (s *SwapService) Get(swapID, userID int64) (*dto.SwapItem, error) {
	swap, err := s.getForParty(swapID, userID)
	if err != nil {
		return nil, err
	}
	return s.toItem(swap, userID), nil
}

// List 列出用户参与的交换。sort 为 "recent" 时按 updated_at 排序（收件箱），
// 否则按 created_at 排序（仪表盘）。
func (s *SwapService) List(userID int64, page, pageSize int, sort string) ([]*dto.SwapItem, int64, error) {
	orderBy := "created_at"
	if sort == "recent" {
		orderBy = "updated_at"
	}

	swaps, total, err := s.swapRepo.ListByParticipant(userID, page, pageSize, orderBy)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.SwapItem, 0, len(swaps))
	for _, swap := range swaps {
		items = append(items, s.toItem(swap, userID))
	}
	return items, total, nil
}

// Accept 接受提案。只有提案的接收方可以接受。
func (s *SwapService) Accept(swapID, userID int64) (*dto.SwapActionResponse, error) {
	swap, err := s.getForParty(swapID, userID)
	if err != nil {
		return nil, err
	}
	if swap.ReceiverID != userID {
		return nil, ErrSwapPermission
	}

	if err := s.transition(swap, model.SwapStatusPending, model.SwapStatusAccepted); err != nil {
		return nil, err
	}

	actor := s.username(userID)
	s.systemMessage(swap, fmt.Sprintf("%s has accepted the swap.", actor))
	s.notify(swap.ProviderID, userID, model.NotifySwapAccepted, swap.ID,
		fmt.Sprintf("%s 接受了你的交换提案", actor))

	return s.toActionResponse(swap), nil
}

// Decline 拒绝提案。与 Accept 同样的授权规则。
func (s *SwapService) Decline(swapID, userID int64) (*dto.SwapActionResponse, error) {
	swap, err := s.getForParty(swapID, userID)
	if err != nil {
		return nil, err
	}
	if swap.ReceiverID != userID {
		return nil, ErrSwapPermission
	}

	if err := s.transition(swap, model.SwapStatusPending, model.SwapStatusDeclined); err != nil {
		return nil, err
	}

	actor := s.username(userID)
	s.systemMessage(swap, fmt.Sprintf("%s has declined the swap.", actor))
	s.notify(swap.ProviderID, userID, model.NotifySwapDeclined, swap.ID,
		fmt.Sprintf("%s 拒绝了你的交换提案", actor))

	return s.toActionResponse(swap), nil
}

// Cancel 取消交换。pending 状态下仅发起方可取消；accepted 状态下双方均可退出。
func (s *SwapService) Cancel(swapID, userID int64) (*dto.SwapActionResponse, error) {
	swap, err := s.getForParty(swapID, userID)
	if err != nil {
		return nil, err
	}
	if swap.IsTerminal() {
		return nil, ErrSwapTerminal
	}
	if swap.Status == model.SwapStatusPending && swap.ProviderID != userID {
		return nil, ErrSwapPermission
	}

	if err := s.transition(swap, swap.Status, model.SwapStatusCancelled); err != nil {
		return nil, err
	}

	actor := s.username(userID)
	s.systemMessage(swap, fmt.Sprintf("%s has cancelled the swap.", actor))
	s.notify(swap.OtherParty(userID), userID, model.NotifySwapCancelled, swap.ID,
		fmt.Sprintf("%s 取消了交换", actor))

	return s.toActionResponse(swap), nil
}

// MarkComplete 标记己方完成。双方都标记后交换进入 completed。
// 标志位更新与法定人数判定在仓储层以单条条件 UPDATE 原子完成。
func (s *SwapService) MarkComplete(swapID, userID int64) (*dto.SwapActionResponse, error) {
	swap, err := s.getForParty(swapID, userID)
	if err != nil {
		return nil, err
	}
	if swap.IsTerminal() {
		return nil, ErrSwapTerminal
	}
	if swap.Status != model.SwapStatusAccepted {
		return nil, ErrSwapNotAccepted
	}

	asProvider := swap.ProviderID == userID

	// 重复标记是无害的空操作
	if (asProvider && swap.ProviderMarkedComplete) || (!asProvider && swap.ReceiverMarkedComplete) {
		return s.toActionResponse(swap), nil
	}

	rows, err := s.swapRepo.MarkComplete(swapID, asProvider)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// 并发下状态已被其他操作改变，重读后按当前状态报错
		return nil, s.staleError(swapID)
	}

	swap, err = s.swapRepo.GetByID(swapID)
	if err != nil {
		return nil, err
	}

	actor := s.username(userID)
	other := swap.OtherParty(userID)
	if swap.Status == model.SwapStatusCompleted {
		s.systemMessage(swap, "Both parties have marked the swap as complete!")
		s.notify(other, userID, model.NotifySwapCompleted, swap.ID, "交换已完成！双方均确认完成")
	} else {
		s.systemMessage(swap, fmt.Sprintf("%s has marked the swap as complete.", actor))
		s.notify(other, userID, model.NotifySwapMarkedComplete, swap.ID,
			fmt.Sprintf("%s 已标记完成，等待你确认", actor))
	}

	return s.toActionResponse(swap), nil
}

// MarkRead 接收方标记收件箱已读
func (s *SwapService) MarkRead(swapID, userID int64) error {
	swap, err := s.getForParty(swapID, userID)
	if err != nil {
		return err
	}
	if swap.ReceiverID != userID {
		return ErrSwapPermission
	}
	return s.swapRepo.MarkRead(swapID)
}

func (s *SwapService) getForParty(swapID, userID int64) (*model.Swap, error) {
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

// transition 条件状态迁移。迁移失败时重读交换，区分终态与并发冲突。
func (s *SwapService) transition(swap *model.Swap, from, to string) error {
	rows, err := s.swapRepo.TransitionStatus(swap.ID, from, to)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.staleError(swap.ID)
	}
	swap.Status = to
	return nil
}

func (s *SwapService) staleError(swapID int64) error {
	current, err := s.swapRepo.GetByID(swapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSwapNotFound
		}
		return err
	}
	if current.IsTerminal() {
		return ErrSwapTerminal
	}
	return ErrSwapNotPending
}

// systemMessage 写入系统聊天消息并向双方推送实时事件，均为尽力而为
func (s *SwapService) systemMessage(swap *model.Swap, content string) {
	msg := &model.SwapMessage{
		SwapID:  swap.ID,
		Content: content,
	}
	if err := s.messageRepo.Create(msg); err != nil {
		log.Printf("Swap %d: failed to write system message: %v", swap.ID, err)
		return
	}

	if s.publisher == nil {
		return
	}
	ctx := context.Background()
	for _, userID := range []int64{swap.ProviderID, swap.ReceiverID} {
		if err := s.publisher.PublishEvent(ctx, &pubsub.Event{
			Type:   pubsub.EventSwapUpdated,
			UserID: userID,
			SwapID: swap.ID,
		}); err != nil {
			log.Printf("Swap %d: failed to publish event: %v", swap.ID, err)
		}
	}
}

// notify 入队通知扇出任务，失败只记录日志
func (s *SwapService) notify(userID, actorID int64, notifyType string, swapID int64, content string) {
	if s.notifyQueue == nil {
		return
	}
	err := s.notifyQueue.Push(context.Background(), &queue.NotifyMessage{
		UserID:    userID,
		ActorID:   &actorID,
		Type:      notifyType,
		SubjectID: &swapID,
		Content:   content,
	})
	if err != nil {
		log.Printf("Swap %d: failed to enqueue notification: %v", swapID, err)
	}
}

func (s *SwapService) username(userID int64) string {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "对方"
	}
	return user.Username
}

func (s *SwapService) toItem(swap *model.Swap, viewerID int64) *dto.SwapItem {
	item := &dto.SwapItem{
		ID:                     swap.ID,
		ProviderID:             swap.ProviderID,
		ReceiverID:             swap.ReceiverID,
		ProviderService:        swap.ProviderService,
		ReceiverService:        swap.ReceiverService,
		Status:                 swap.Status,
		ProviderMarkedComplete: swap.ProviderMarkedComplete,
		ReceiverMarkedComplete: swap.ReceiverMarkedComplete,
		Read:                   swap.Read,
		CreatedAt:              swap.CreatedAt,
		UpdatedAt:              swap.UpdatedAt,
	}

	if other, err := s.userRepo.GetByID(swap.OtherParty(viewerID)); err == nil {
		item.Counterparty = &dto.UserInfo{
			ID:                other.ID,
			Username:          other.Username,
			AvatarURL:         other.AvatarURL,
			Bio:               other.Bio,
			Location:          other.Location,
			VerificationBadge: other.VerificationBadge,
		}
	}
	return item
}

func (s *SwapService) toActionResponse(swap *model.Swap) *dto.SwapActionResponse {
	return &dto.SwapActionResponse{
		ID:                     swap.ID,
		Status:                 swap.Status,
		ProviderMarkedComplete: swap.ProviderMarkedComplete,
		ReceiverMarkedComplete: swap.ReceiverMarkedComplete,
	}
}
