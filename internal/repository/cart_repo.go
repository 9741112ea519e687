package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
)

type UpsertItemParams struct {
	CartID    string
	ProductID string
	Quantity  int
	Mode      entity.QuantityMode
}

// CartRepository stores carts with their items. Every method that returns a cart
// returns it with item products loaded and a total that matches them.
type CartRepository interface {
	GetOrCreate(ctx context.Context, idHint string) (*entity.Cart, error)
	GetByID(ctx context.Context, cartID string) (*entity.Cart, error)
	FindItem(ctx context.Context, cartID, productID string) (*entity.CartItem, error)
	UpsertItem(ctx context.Context, params UpsertItemParams) (*entity.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID string) (bool, *entity.Cart, error)
	RecomputeTotal(ctx context.Context, cartID string) (*entity.Cart, error)
	Delete(ctx context.Context, cartID string) error

	ListIdle(ctx context.Context, before time.Time) ([]string, error)
	MarkAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error)
	ListAbandoned(ctx context.Context, before time.Time) ([]string, error)
	DeleteAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error)
}
