package auth

import (
	"time"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
)

// LoginRequest represents the input for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the input for user registration. Format rules
// are enforced by the service so that a trimmed, lower-cased email is checked.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func newAuthResponse(r *Result) AuthResponse {
	return AuthResponse{User: r.User, Token: r.Token, ExpiresAt: r.ExpiresAt}
}
