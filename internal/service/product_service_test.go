package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProductService() (ProductService, *MockProductRepository, *MockProductCache) {
	products := new(MockProductRepository)
	cache := new(MockProductCache)
	return NewProductService(products, cache, nil, logger.NewNop(), time.Minute), products, cache
}

func TestProductService_GetProduct_CacheHit(t *testing.T) {
	svc, products, cache := newTestProductService()
	p := testProduct("a", "9.99")

	cache.On("Get", mock.Anything, "a").Return(p, nil).Once()

	got, err := svc.GetProduct(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, p, got)
	products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProductService_GetProduct_CacheMissFillsCache(t *testing.T) {
	svc, products, cache := newTestProductService()
	p := testProduct("a", "9.99")

	cache.On("Get", mock.Anything, "a").Return(nil, repository.ErrNotFound).Once()
	products.On("GetByID", mock.Anything, "a").Return(p, nil).Once()
	cache.On("Set", mock.Anything, p, time.Minute).Return(nil).Once()

	got, err := svc.GetProduct(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, p, got)
	cache.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestProductService_GetProduct_CacheErrorFallsBack(t *testing.T) {
	svc, products, cache := newTestProductService()
	p := testProduct("a", "9.99")

	cache.On("Get", mock.Anything, "a").Return(nil, errors.New("redis down")).Once()
	products.On("GetByID", mock.Anything, "a").Return(p, nil).Once()
	cache.On("Set", mock.Anything, p, time.Minute).Return(errors.New("redis down")).Once()

	got, err := svc.GetProduct(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	svc, products, cache := newTestProductService()

	cache.On("Get", mock.Anything, "nope").Return(nil, repository.ErrNotFound).Once()
	products.On("GetByID", mock.Anything, "nope").Return(nil, repository.ErrNotFound).Once()

	got, err := svc.GetProduct(context.Background(), "nope")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_ListProducts(t *testing.T) {
	svc, products, _ := newTestProductService()
	list := []entity.Product{*testProduct("a", "1"), *testProduct("b", "2")}

	products.On("List", mock.Anything, repository.ListProductsParams{Page: 2, PageSize: 10}).Return(list, nil).Once()

	got, err := svc.ListProducts(context.Background(), 2, 10)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProductService_ListProducts_Error(t *testing.T) {
	svc, products, _ := newTestProductService()
	dbErr := errors.New("timeout")

	products.On("List", mock.Anything, mock.Anything).Return(nil, dbErr).Once()

	_, err := svc.ListProducts(context.Background(), 1, 10)
	assert.ErrorIs(t, err, dbErr)
}
