package dto

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

type UserInfo struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email,omitempty"`
	AvatarURL         string `json:"avatar_url"`
	Bio               string `json:"bio"`
	Location          string `json:"location"`
	VerificationBadge bool   `json:"verification_badge"`
	EmailVerified     bool   `json:"email_verified"`
}
