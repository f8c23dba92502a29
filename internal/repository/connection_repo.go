package repository

import (
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/internal/model"
)

type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func (r *ConnectionRepository) Create(conn *model.Connection) error {
	return r.db.Create(conn).Error
}

func (r *ConnectionRepository) GetByID(id int64) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.Where("id = ?", id).First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetBetween 查找两个用户之间的连接（任一方向）
func (r *ConnectionRepository) GetBetween(userA, userB int64) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.Where(
		"(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)",
		userA, userB, userB, userA,
	).First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// ListForUser 列出用户的连接，status 为空表示不过滤
func (r *ConnectionRepository) ListForUser(userID int64, status string, page, pageSize int) ([]*model.Connection, int64, error) {
	var total int64
	var conns []*model.Connection

	query := r.db.Model(&model.Connection{}).
		Where("requester_id = ? OR recipient_id = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&conns).Error
	return conns, total, err
}

// TransitionStatus 条件状态迁移，返回受影响行数
func (r *ConnectionRepository) TransitionStatus(id int64, from, to string) (int64, error) {
	result := r.db.Model(&model.Connection{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
