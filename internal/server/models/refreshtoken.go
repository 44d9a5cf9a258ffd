package models

import "time"

// RefreshRecord is the single tracked refresh token of a user. Only the hash
// of the token string is stored.
type RefreshRecord struct {
	UserID    string
	TokenHash string
	Revoked   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
