package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
)

type ProductCache interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productID string) error
}
