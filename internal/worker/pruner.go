package worker

import (
	"context"
	"log"
	"time"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/repository"
)

const defaultRetentionDays = 30

// Pruner 定期清理过期的已读通知
type Pruner struct {
	notificationRepo *repository.NotificationRepository
	retentionDays    int
}

// NewPruner 创建通知清理器
func NewPruner(notificationRepo *repository.NotificationRepository, cfg *config.Config) *Pruner {
	days := cfg.Notification.RetentionDays
	if days <= 0 {
		days = defaultRetentionDays
	}
	return &Pruner{
		notificationRepo: notificationRepo,
		retentionDays:    days,
	}
}

// PruneOnce 删除保留期之外的已读通知，返回删除行数
func (p *Pruner) PruneOnce(now time.Time) (int64, error) {
	before := now.AddDate(0, 0, -p.retentionDays)
	return p.notificationRepo.DeleteReadBefore(before)
}

// Run 每隔 interval 执行一次清理，直到 ctx 取消
func (p *Pruner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rows, err := p.PruneOnce(time.Now())
			if err != nil {
				log.Printf("Failed to prune notifications: %v", err)
				continue
			}
			if rows > 0 {
				log.Printf("Pruned %d read notifications older than %d days", rows, p.retentionDays)
			}
		}
	}
}
