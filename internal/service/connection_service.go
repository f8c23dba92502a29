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
	ErrConnectionNotFound   = errors.New("连接请求不存在")
	ErrConnectionExists     = errors.New("已存在连接或待处理的请求")
	ErrConnectionSelf       = errors.New("不能连接自己")
	ErrConnectionPermission = errors.New("无权操作此连接请求")
	ErrConnectionHandled    = errors.New("连接请求已被处理")
)

type ConnectionService struct {
	connRepo    *repository.ConnectionRepository
	userRepo    *repository.UserRepository
	notifyQueue *queue.Queue
	cfg         *config.Config
}

func NewConnectionService(
	connRepo *repository.ConnectionRepository,
	userRepo *repository.UserRepository,
	notifyQueue *queue.Queue,
	cfg *config.Config,
) *ConnectionService {
	return &ConnectionService{
		connRepo:    connRepo,
		userRepo:    userRepo,
		notifyQueue: notifyQueue,
		cfg:         cfg,
	}
}

// Request 发起连接请求
func (s *ConnectionService) Request(userID int64, req *dto.ConnectRequest) (*dto.ConnectionItem, error) {
	if req.RecipientID == userID {
		return nil, ErrConnectionSelf
	}

	if _, err := s.userRepo.GetByID(req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 任一方向已有未被拒绝的连接则不再重复发起
	existing, err := s.connRepo.GetBetween(userID, req.RecipientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != model.ConnectionStatusDeclined {
		return nil, ErrConnectionExists
	}

	conn := &model.Connection{
		RequesterID: userID,
		RecipientID: req.RecipientID,
		Status:      model.ConnectionStatusPending,
	}
	if err := s.connRepo.Create(conn); err != nil {
		return nil, err
	}

	s.notify(req.RecipientID, userID, model.NotifyConnectionRequest, conn.ID,
		s.username(userID)+" 请求与你建立连接")

	return s.toItem(conn, userID), nil
}

// Accept 接受连接请求，仅接收方
func (s *ConnectionService) Accept(connID, userID int64) (*dto.ConnectionItem, error) {
	conn, err := s.getForRecipient(connID, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.connRepo.TransitionStatus(connID,
		model.ConnectionStatusPending, model.ConnectionStatusAccepted)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrConnectionHandled
	}
	conn.Status = model.ConnectionStatusAccepted

	s.notify(conn.RequesterID, userID, model.NotifyConnectionAccepted, conn.ID,
		s.username(userID)+" 接受了你的连接请求")

	return s.toItem(conn, userID), nil
}

// Decline 拒绝连接请求，仅接收方
func (s *ConnectionService) Decline(connID, userID int64) (*dto.ConnectionItem, error) {
	conn, err := s.getForRecipient(connID, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.connRepo.TransitionStatus(connID,
		model.ConnectionStatusPending, model.ConnectionStatusDeclined)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrConnectionHandled
	}
	conn.Status = model.ConnectionStatusDeclined

	return s.toItem(conn, userID), nil
}

// List 列出用户的连接，status 可选过滤
func (s *ConnectionService) List(userID int64, status string, page, pageSize int) ([]*dto.ConnectionItem, int64, error) {
	conns, total, err := s.connRepo.ListForUser(userID, status, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ConnectionItem, 0, len(conns))
	for _, conn := range conns {
		items = append(items, s.toItem(conn, userID))
	}
	return items, total, nil
}

func (s *ConnectionService) getForRecipient(connID, userID int64) (*model.Connection, error) {
	conn, err := s.connRepo.GetByID(connID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	if conn.RecipientID != userID {
		return nil, ErrConnectionPermission
	}
	return conn, nil
}

func (s *ConnectionService) toItem(conn *model.Connection, viewerID int64) *dto.ConnectionItem {
	item := &dto.ConnectionItem{
		ID:          conn.ID,
		RequesterID: conn.RequesterID,
		RecipientID: conn.RecipientID,
		Status:      conn.Status,
		CreatedAt:   conn.CreatedAt,
	}

	peerID := conn.RequesterID
	if peerID == viewerID {
		peerID = conn.RecipientID
	}
	if peer, err := s.userRepo.GetByID(peerID); err == nil {
		item.Peer = buildUserInfo(peer)
	}
	return item
}

func (s *ConnectionService) notify(userID, actorID int64, notifyType string, subjectID int64, content string) {
	if s.notifyQueue == nil {
		return
	}
	err := s.notifyQueue.Push(context.Background(), &queue.NotifyMessage{
		UserID:    userID,
		ActorID:   &actorID,
		Type:      notifyType,
		SubjectID: &subjectID,
		Content:   content,
	})
	if err != nil {
		log.Printf("Connection %d: failed to enqueue notification: %v", subjectID, err)
	}
}

func (s *ConnectionService) username(userID int64) string {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "对方"
	}
	return user.Username
}
