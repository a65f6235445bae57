package dto

import (
	"time"

	"github.com/medconsult/consultation-service/internal/domain"
)

// RegisterRequest payload for new accounts of any role.
type RegisterRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required" trim:"false"`
	Role           string `json:"role"`
	Specialization string `json:"specialization"`
	ContactNumber  string `json:"contactNumber"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required" trim:"false"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// MessageResponse pairs a human readable message with an optional payload.
type MessageResponse struct {
	Message string `json:"message"`
	User    any    `json:"user,omitempty"`
}
