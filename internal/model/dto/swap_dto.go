package dto

import "time"

type ProposeSwapRequest struct {
	ReceiverID      int64  `json:"receiver_id" binding:"required"`
	ProviderService string `json:"provider_service" binding:"required,max=200"`
	ReceiverService string `json:"receiver_service" binding:"required,max=200"`
	Message         string `json:"message" binding:"max=2000"`
}

// SwapItem 交换列表条目
type SwapItem struct {
	ID                     int64     `json:"id"`
	ProviderID             int64     `json:"provider_id"`
	ReceiverID             int64     `json:"receiver_id"`
	ProviderService        string    `json:"provider_service"`
	ReceiverService        string    `json:"receiver_service"`
	Status                 string    `json:"status"`
	ProviderMarkedComplete bool      `json:"provider_marked_complete"`
	ReceiverMarkedComplete bool      `json:"receiver_marked_complete"`
	Read                   bool      `json:"read"`
	Counterparty           *UserInfo `json:"counterparty,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// SwapActionResponse 状态变更操作的返回
type SwapActionResponse struct {
	ID                     int64  `json:"id"`
	Status                 string `json:"status"`
	ProviderMarkedComplete bool   `json:"provider_marked_complete"`
	ReceiverMarkedComplete bool   `json:"receiver_marked_complete"`
}
