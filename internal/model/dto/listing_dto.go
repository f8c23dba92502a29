package dto

import "time"

type CreateListingRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Category    string `json:"category" binding:"required,max=50"`
	Description string `json:"description" binding:"max=5000"`
	ImageURL    string `json:"image_url" binding:"max=500"`
	AudioURL    string `json:"audio_url" binding:"max=500"`
}

type UpdateListingRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Category    *string `json:"category" binding:"omitempty,max=50"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=500"`
	AudioURL    *string `json:"audio_url" binding:"omitempty,max=500"`
	Active      *bool   `json:"active"`
}

type ListingItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	AudioURL    string    `json:"audio_url"`
	Active      bool      `json:"active"`
	Owner       *UserInfo `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
