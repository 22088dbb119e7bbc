// Package transport defines the auth API DTOs.
package transport

import "time"

// LoginRequest carries credentials for commune users and conservateurs.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest revokes a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProfileResponse describes the authenticated account.
type ProfileResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	CodeInsee       string    `json:"code_insee,omitempty"`
	DepartementCode string    `json:"departement_code,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
