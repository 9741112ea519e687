package service

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) cart(args mock.Arguments) (*entity.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cart), args.Error(1)
}

func (m *MockCartRepository) GetOrCreate(ctx context.Context, idHint string) (*entity.Cart, error) {
	return m.cart(m.Called(ctx, idHint))
}

func (m *MockCartRepository) GetByID(ctx context.Context, cartID string) (*entity.Cart, error) {
	return m.cart(m.Called(ctx, cartID))
}

func (m *MockCartRepository) FindItem(ctx context.Context, cartID, productID string) (*entity.CartItem, error) {
	args := m.Called(ctx, cartID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CartItem), args.Error(1)
}

func (m *MockCartRepository) UpsertItem(ctx context.Context, params repository.UpsertItemParams) (*entity.Cart, error) {
	return m.cart(m.Called(ctx, params))
}

func (m *MockCartRepository) RemoveItem(ctx context.Context, cartID, productID string) (bool, *entity.Cart, error) {
	args := m.Called(ctx, cartID, productID)
	var cart *entity.Cart
	if args.Get(1) != nil {
		cart = args.Get(1).(*entity.Cart)
	}
	return args.Bool(0), cart, args.Error(2)
}

func (m *MockCartRepository) RecomputeTotal(ctx context.Context, cartID string) (*entity.Cart, error) {
	return m.cart(m.Called(ctx, cartID))
}

func (m *MockCartRepository) Delete(ctx context.Context, cartID string) error {
	return m.Called(ctx, cartID).Error(0)
}

func (m *MockCartRepository) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCartRepository) MarkAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error) {
	args := m.Called(ctx, cartID, before)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) ListAbandoned(ctx context.Context, before time.Time) ([]string, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCartRepository) DeleteAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error) {
	args := m.Called(ctx, cartID, before)
	return args.Bool(0), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, productIDs []string) (map[string]*entity.Product, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entity.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, params repository.ListProductsParams) ([]entity.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductCache) Set(ctx context.Context, product *entity.Product, ttl time.Duration) error {
	return m.Called(ctx, product, ttl).Error(0)
}

func (m *MockProductCache) Delete(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, page, pageSize int) ([]entity.Product, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Bind(ctx context.Context, token, cartID string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, token, cartID, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSessionRepository) Refresh(ctx context.Context, token string, ttl time.Duration) error {
	return m.Called(ctx, token, ttl).Error(0)
}
