package model

import (
	"time"
)

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned on successful login or refresh.
type AuthResponse struct {
	User         *User     `json:"user"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Envelope is the uniform response wrapper for every endpoint.
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Result  any    `json:"result"`
}
