package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/pkg/pubsub"
	"github.com/servswap/servswap_go_server/internal/pkg/queue"
	"github.com/servswap/servswap_go_server/internal/repository"
)

// Processor 通知扇出处理器：消费队列任务，落库通知并推送给在线用户
type Processor struct {
	notificationRepo *repository.NotificationRepository
	publisher        *pubsub.Publisher
	cfg              *config.Config
}

// NewProcessor 创建通知处理器
func NewProcessor(
	notificationRepo *repository.NotificationRepository,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *Processor {
	return &Processor{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		cfg:              cfg,
	}
}

// Process 处理一条通知任务。落库是必须的，实时推送尽力而为。
func (p *Processor) Process(ctx context.Context, msg *queue.NotifyMessage) error {
	notification := &model.Notification{
		UserID:    msg.UserID,
		ActorID:   msg.ActorID,
		Type:      msg.Type,
		SubjectID: msg.SubjectID,
		Content:   msg.Content,
	}

	if err := p.notificationRepo.Create(notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	if p.publisher != nil {
		if err := p.publisher.PublishTo(ctx, msg.UserID, pubsub.EventNotification, notification); err != nil {
			log.Printf("Notification %d: failed to publish event: %v", notification.ID, err)
		}
	}

	return nil
}
