package repository

import (
	"context"
	"time"
)

// SessionRepository maps opaque session tokens to cart ids.
type SessionRepository interface {
	// Bind stores cartID for token unless the token is already bound. It returns the
	// cart id the token is bound to after the call and whether this call created it.
	Bind(ctx context.Context, token, cartID string, ttl time.Duration) (string, bool, error)
	Refresh(ctx context.Context, token string, ttl time.Duration) error
}
