package dto

import (
	"time"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequestOTPRequest payload for login step one.
type LoginRequestOTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginVerifyOTPRequest payload for login step two.
type LoginVerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserView maps a domain user to its public view.
func UserView(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
