// Package refreshtokens declares the server-side repository contract for
// the single tracked refresh token of each user.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores refresh tokens by their hash. There is at most one record
// per user.
type Repository interface {
	// ReplaceForUser atomically drops any prior record of userID and stores
	// the new one. Concurrent calls resolve as last writer wins.
	ReplaceForUser(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// Rotate swaps oldHash for newHash only if oldHash is still the user's
	// current, non-revoked record. It returns false when it lost the race.
	Rotate(ctx context.Context, userID, oldHash, newHash string, expiresAt time.Time) (bool, error)

	// FindByValue returns common.ErrorNotFound when no record has the hash.
	FindByValue(ctx context.Context, tokenHash string) (*models.RefreshRecord, error)

	// RevokeByValue deletes the record with the hash. Missing records are
	// not an error.
	RevokeByValue(ctx context.Context, tokenHash string) error

	// RevokeForUser marks the user's record revoked, if any.
	RevokeForUser(ctx context.Context, userID string) error
}
