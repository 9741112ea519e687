package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

const (
	defaultProductCacheTTL = 5 * time.Minute
)

// ProductService is the read-only view of the catalog.
type ProductService interface {
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) ([]entity.Product, error)
}

type productService struct {
	products     repository.ProductRepository
	productCache repository.ProductCache
	metrics      *metrics.MetricsManager
	log          logger.Logger
	cacheTTL     time.Duration
}

func NewProductService(
	products repository.ProductRepository,
	productCache repository.ProductCache,
	m *metrics.MetricsManager,
	log logger.Logger,
	cacheTTL time.Duration,
) ProductService {
	if cacheTTL <= 0 {
		cacheTTL = defaultProductCacheTTL
	}
	return &productService{
		products:     products,
		productCache: productCache,
		metrics:      m,
		log:          log,
		cacheTTL:     cacheTTL,
	}
}

func (s *productService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	cached, cacheErr := s.productCache.Get(ctx, productID)
	if cacheErr == nil && cached != nil {
		s.metrics.ObserveCacheLookup("hit")
		s.log.Debugf("Product %s found in cache", productID)
		return cached, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, repository.ErrNotFound) {
		s.metrics.ObserveCacheLookup("error")
		s.log.Warnf("Error getting product %s from cache: %v. Fetching from catalog.", productID, cacheErr)
	} else {
		s.metrics.ObserveCacheLookup("miss")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, entity.ErrProductNotFound)
		}
		s.log.Errorf("Failed to get product %s from catalog: %v", productID, err)
		return nil, fmt.Errorf("could not retrieve product %s: %w", productID, err)
	}

	if err := s.productCache.Set(ctx, product, s.cacheTTL); err != nil {
		s.log.Warnf("Failed to set product %s to cache: %v", productID, err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, page, pageSize int) ([]entity.Product, error) {
	products, err := s.products.List(ctx, repository.ListProductsParams{Page: page, PageSize: pageSize})
	if err != nil {
		s.log.Errorf("Failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	return products, nil
}
