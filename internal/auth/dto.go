package auth

import (
	"github.com/avalenz-dev/storefront-backend/internal/users"
)

// RegisterRequest is the payload accepted by POST /register.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=64"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=128"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=256"`
}

// LoginRequest is the payload accepted by POST /login. Username doubles as
// the email field; either identifier is accepted.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the minted token and the public user shape.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
