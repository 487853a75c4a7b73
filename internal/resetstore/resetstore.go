// Package resetstore keeps single-use password reset tokens until they are
// redeemed or expire.
package resetstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound means the token is unknown, expired or already used.
var ErrNotFound = errors.New("reset token not found")

// Store maps reset tokens to user IDs.
type Store interface {
	// Put stores token for userID until ttl elapses.
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Take returns the user ID for token and removes it.
	Take(ctx context.Context, token string) (string, error)
}

func key(token string) string { return "pwreset:" + token }
