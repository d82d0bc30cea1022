package auth

import (
	"github.com/ratehub/ratehub-backend/internal/users"
)

// RegisterInput captures a self-service signup. Signups always get the normal
// user role; admins and store owners are provisioned by an admin.
type RegisterInput struct {
	Name     string
	Email    string
	Address  string
	Password string
}

// LoginRequest carries submitted credentials.
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse is returned from register, login, and refresh.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// ChangePasswordInput carries a password rotation request for the caller.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}
