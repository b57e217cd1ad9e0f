package store

import (
	"context"
	"time"
)

// ResetTokenStore records outstanding password reset tokens so each can be
// redeemed once.
type ResetTokenStore interface {
	// Save records tokenID for userID. The record expires after ttl.
	Save(ctx context.Context, tokenID string, userID int64, ttl time.Duration) error

	// Consume atomically removes tokenID and returns the user it was issued to.
	// Returns ErrResetTokenNotFound if the token is unknown, expired or spent.
	Consume(ctx context.Context, tokenID string) (int64, error)
}
