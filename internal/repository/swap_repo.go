package repository

import (
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/internal/model"
)

type SwapRepository struct {
	db *gorm.DB
}

func NewSwapRepository(db *gorm.DB) *SwapRepository {
	return &SwapRepository{db: db}
}

func (r *SwapRepository) Create(swap *model.Swap) error {
	return r.db.Create(swap).Error
}

func (r *SwapRepository) GetByID(id int64) (*model.Swap, error) {
	var swap model.Swap
	err := r.db.Where("id = ?", id).First(&swap).Error
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

// ListByParticipant 列出用户参与的全部交换（作为 provider 或 receiver）
// orderBy 取 "created_at" 或 "updated_at"
func (r *SwapRepository) ListByParticipant(userID int64, page, pageSize int, orderBy string) ([]*model.Swap, int64, error) {
	var total int64
	var swaps []*model.Swap

	if orderBy != "updated_at" {
		orderBy = "created_at"
	}

	query := r.db.Model(&model.Swap{}).Where("provider_id = ? OR receiver_id = ?", userID, userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order(orderBy + " DESC").Offset(offset).Limit(pageSize).Find(&swaps).Error
	return swaps, total, err
}

// TransitionStatus 条件状态迁移：仅当当前状态为 from 时迁移到 to。
// 返回受影响行数，0 表示前置条件不满足（状态已变化或记录不存在）。
func (r *SwapRepository) TransitionStatus(id int64, from, to string) (int64, error) {
	result := r.db.Model(&model.Swap{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// MarkComplete 设置一方的完成标记。单条条件更新完成配额判定：
// 若对方标记已为真，状态同时迁移为 completed，避免读-改-写竞态。
// 仅在 status = accepted 时生效，返回受影响行数。
func (r *SwapRepository) MarkComplete(id int64, asProvider bool) (int64, error) {
	own := "receiver_marked_complete"
	other := "provider_marked_complete"
	if asProvider {
		own, other = other, own
	}

	result := r.db.Model(&model.Swap{}).
		Where("id = ? AND status = ?", id, model.SwapStatusAccepted).
		Updates(map[string]interface{}{
			own:      true,
			"status": gorm.Expr("CASE WHEN "+other+" THEN ? ELSE status END", model.SwapStatusCompleted),
		})
	return result.RowsAffected, result.Error
}

// MarkRead 接收方已读
func (r *SwapRepository) MarkRead(id int64) error {
	return r.db.Model(&model.Swap{}).Where("id = ?", id).Update("is_read", true).Error
}

// CountCompletedBetween 统计两个用户之间已完成的交换数
func (r *SwapRepository) CountCompletedBetween(userA, userB int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Swap{}).
		Where("status = ?", model.SwapStatusCompleted).
		Where("(provider_id = ? AND receiver_id = ?) OR (provider_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count, err
}

// CountCompletedForUser 统计用户完成的交换数
func (r *SwapRepository) CountCompletedForUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Swap{}).
		Where("status = ?", model.SwapStatusCompleted).
		Where("provider_id = ? OR receiver_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}
