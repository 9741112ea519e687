package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
)

type ListProductsParams struct {
	Page     int
	PageSize int
}

type ProductRepository interface {
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
	GetByIDs(ctx context.Context, productIDs []string) (map[string]*entity.Product, error)
	List(ctx context.Context, params ListProductsParams) ([]entity.Product, error)
}
