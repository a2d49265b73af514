package dto

import "time"

// LoginRequest payload for operator login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued access token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OperatorResponse identifies the logged-in operator.
type OperatorResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
