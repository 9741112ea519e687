package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	maxBindAttempts  = 3
)

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) repository.SessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func (r *sessionRepository) getSessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Bind is a single conditional insert (SETNX). When the token is already bound the
// existing cart id wins; the read is retried if the key expires in between.
func (r *sessionRepository) Bind(ctx context.Context, token, cartID string, ttl time.Duration) (string, bool, error) {
	key := r.getSessionKey(token)

	for attempt := 0; attempt < maxBindAttempts; attempt++ {
		created, err := r.client.SetNX(ctx, key, cartID, ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("failed to bind session in redis: %w", err)
		}
		if created {
			return cartID, true, nil
		}

		existing, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return "", false, fmt.Errorf("failed to read session from redis: %w", err)
		}
		return existing, false, nil
	}
	return "", false, fmt.Errorf("session %s: %w", token, repository.ErrSessionUnstable)
}

func (r *sessionRepository) Refresh(ctx context.Context, token string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, r.getSessionKey(token), ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh session ttl in redis: %w", err)
	}
	return nil
}
