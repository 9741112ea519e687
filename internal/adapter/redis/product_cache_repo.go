package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix = "product:"
)

type productCacheRepository struct {
	client *redis.Client
}

func NewProductCacheRepository(client *redis.Client) repository.ProductCache {
	return &productCacheRepository{
		client: client,
	}
}

func (r *productCacheRepository) getProductKey(productID string) string {
	return productKeyPrefix + productID
}

func (r *productCacheRepository) Get(ctx context.Context, productID string) (*entity.Product, error) {
	key := r.getProductKey(productID)
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s from redis: %w", productID, err)
	}

	var product entity.Product
	if err := json.Unmarshal(val, &product); err != nil {
		_ = r.Delete(ctx, productID)
		return nil, fmt.Errorf("failed to unmarshal cached product %s: %w", productID, err)
	}
	return &product, nil
}

func (r *productCacheRepository) Set(ctx context.Context, product *entity.Product, ttl time.Duration) error {
	if product == nil || product.ID == "" {
		return errors.New("cannot cache nil product or product with empty id")
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID, err)
	}

	if err := r.client.Set(ctx, r.getProductKey(product.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product %s in redis: %w", product.ID, err)
	}
	return nil
}

func (r *productCacheRepository) Delete(ctx context.Context, productID string) error {
	if err := r.client.Del(ctx, r.getProductKey(productID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached product %s from redis: %w", productID, err)
	}
	return nil
}
