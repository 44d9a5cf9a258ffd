package grpc

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	IdentityID   string `json:"identityId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by Login and Refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthenticateRequest struct {
	AccessToken string `json:"accessToken"`
}

type AuthenticateResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UpdateRolesRequest struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type IdentityResponse struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	Active bool     `json:"active"`
}

type SetActiveRequest struct {
	IdentityID string `json:"identityId"`
	Active     bool   `json:"active"`
}

type DeleteCredentialsRequest struct {
	IdentityID string `json:"identityId"`
}

// Empty is the response of calls that return nothing.
type Empty struct{}
