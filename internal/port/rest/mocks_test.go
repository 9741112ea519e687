package rest

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) payload(args mock.Arguments) (*service.CartPayload, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartPayload), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, cartID, productID, rawQuantity string) (*service.CartPayload, error) {
	return m.payload(m.Called(ctx, cartID, productID, rawQuantity))
}

func (m *MockCartService) SetItemQuantity(ctx context.Context, cartID, productID, rawQuantity string) (*service.CartPayload, error) {
	return m.payload(m.Called(ctx, cartID, productID, rawQuantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, cartID, productID string) (*service.CartPayload, error) {
	return m.payload(m.Called(ctx, cartID, productID))
}

func (m *MockCartService) GetCart(ctx context.Context, cartID string) (*service.CartPayload, error) {
	return m.payload(m.Called(ctx, cartID))
}

func (m *MockCartService) RecomputeTotal(ctx context.Context, cartID string) (*service.CartPayload, error) {
	return m.payload(m.Called(ctx, cartID))
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

type MockSessionResolver struct {
	mock.Mock
}

func (m *MockSessionResolver) Resolve(ctx context.Context, token string) (*service.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}
