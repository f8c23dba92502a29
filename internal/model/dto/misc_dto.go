package dto

import "time"

// UpdateProfileRequest 更新个人资料
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	Location *string `json:"location" binding:"omitempty,max=100"`
}

// ProfileResponse 公开资料，含评价摘要
type ProfileResponse struct {
	User             *UserInfo `json:"user"`
	EndorsementCount int64     `json:"endorsement_count"`
	AverageRating    float64   `json:"average_rating"`
	CompletedSwaps   int64     `json:"completed_swaps"`
}

// SendMessageRequest 发送会话消息
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type MessageItem struct {
	ID        int64     `json:"id"`
	SwapID    int64     `json:"swap_id"`
	SenderID  *int64    `json:"sender_id,omitempty"`
	Sender    *UserInfo `json:"sender,omitempty"`
	Content   string    `json:"content"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectRequest 发起连接请求
type ConnectRequest struct {
	RecipientID int64 `json:"recipient_id" binding:"required"`
}

type ConnectionItem struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	RecipientID int64     `json:"recipient_id"`
	Status      string    `json:"status"`
	Peer        *UserInfo `json:"peer,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EndorseRequest 提交评价
type EndorseRequest struct {
	EndorseeID int64  `json:"endorsee_id" binding:"required"`
	SwapID     *int64 `json:"swap_id"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment" binding:"max=2000"`
}

type EndorsementItem struct {
	ID        int64     `json:"id"`
	Endorser  *UserInfo `json:"endorser,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationItem struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Actor     *UserInfo `json:"actor,omitempty"`
	SubjectID *int64    `json:"subject_id,omitempty"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResponse 上传结果
type UploadResponse struct {
	URL string `json:"url"`
}
