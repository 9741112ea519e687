package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL = 30 * 24 * time.Hour
)

// Session is the outcome of resolving a client token.
type Session struct {
	Token  string
	CartID string
	// Issued is true when Token was minted by this resolution and must be sent to the client.
	Issued bool
}

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*Session, error)
}

type sessionResolver struct {
	sessions repository.SessionRepository
	cartRepo repository.CartRepository
	log      logger.Logger
	ttl      time.Duration
}

func NewSessionResolver(
	sessions repository.SessionRepository,
	cartRepo repository.CartRepository,
	log logger.Logger,
	ttl time.Duration,
) SessionResolver {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &sessionResolver{
		sessions: sessions,
		cartRepo: cartRepo,
		log:      log,
		ttl:      ttl,
	}
}

// Resolve maps token to a cart id, creating the cart on first use. Tokens that are
// missing or not ours are replaced with a freshly issued one.
func (r *sessionResolver) Resolve(ctx context.Context, token string) (*Session, error) {
	issued := false
	if _, err := uuid.Parse(token); err != nil {
		token = uuid.NewString()
		issued = true
	}

	cartID, bound, err := r.sessions.Bind(ctx, token, uuid.NewString(), r.ttl)
	if err != nil {
		return nil, fmt.Errorf("could not resolve session: %w", err)
	}
	if !bound {
		if err := r.sessions.Refresh(ctx, token, r.ttl); err != nil {
			r.log.Warnf("Failed to refresh session ttl: %v", err)
		}
	}

	cart, err := r.cartRepo.GetOrCreate(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrOptimisticLock) {
			return nil, err
		}
		r.log.Errorf("Failed to get or create cart %s for session: %v", cartID, err)
		return nil, fmt.Errorf("could not get or create cart: %w", err)
	}
	if bound {
		r.log.Infof("Cart %s created for new session", cart.ID)
	}

	return &Session{Token: token, CartID: cart.ID, Issued: issued}, nil
}
