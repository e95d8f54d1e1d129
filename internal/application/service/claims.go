package service

import (
	"context"
	"time"
)

// ClaimStore hands out short-lived exclusive holds on usernames while a
// publish is in flight.
type ClaimStore interface {
	// Claim returns false when another token already holds the name.
	Claim(ctx context.Context, username, token string, ttl time.Duration) (bool, error)
	// Release drops the hold only if token still owns it.
	Release(ctx context.Context, username, token string) error
	// Claimed returns the subset of names currently held.
	Claimed(ctx context.Context, names []string) (map[string]bool, error)
}
