package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCartID = "cart1"

func testProduct(id, price string) *entity.Product {
	return &entity.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString(price)}
}

// pricedCart builds a cart whose items are priced against products, as the store returns it.
func pricedCart(t *testing.T, quantities map[string]int, order []string, products ...*entity.Product) *entity.Cart {
	t.Helper()
	cart := entity.NewCart(testCartID, time.Now())
	for _, id := range order {
		_, err := cart.ApplyQuantity(id, quantities[id], entity.QuantitySet)
		require.NoError(t, err)
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	_, err := cart.RecalculateTotal(byID)
	require.NoError(t, err)
	return cart
}

func newTestCartService() (CartService, *MockCartRepository, *MockProductService) {
	repo := new(MockCartRepository)
	products := new(MockProductService)
	return NewCartService(repo, products, nil, logger.NewNop()), repo, products
}

func TestCartService_AddItem_Success(t *testing.T) {
	svc, repo, products := newTestCartService()
	a := testProduct("a", "10.0")

	products.On("GetProduct", mock.Anything, "a").Return(a, nil).Once()
	repo.On("UpsertItem", mock.Anything, repository.UpsertItemParams{
		CartID:    testCartID,
		ProductID: "a",
		Quantity:  2,
		Mode:      entity.QuantityIncrement,
	}).Return(pricedCart(t, map[string]int{"a": 2}, []string{"a"}, a), nil).Once()

	payload, err := svc.AddItem(context.Background(), testCartID, "a", "2")

	require.NoError(t, err)
	assert.Equal(t, testCartID, payload.ID)
	require.Len(t, payload.Products, 1)
	assert.Equal(t, "a", payload.Products[0].ID)
	assert.Equal(t, "Product a", payload.Products[0].Name)
	assert.Equal(t, 2, payload.Products[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(payload.Products[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(payload.Products[0].TotalPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(payload.TotalPrice))

	repo.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestCartService_TwoProductsTotal(t *testing.T) {
	svc, repo, products := newTestCartService()
	a := testProduct("a", "10.0")
	b := testProduct("b", "20.0")

	products.On("GetProduct", mock.Anything, "b").Return(b, nil).Once()
	repo.On("UpsertItem", mock.Anything, mock.MatchedBy(func(p repository.UpsertItemParams) bool {
		return p.ProductID == "b" && p.Quantity == 1 && p.Mode == entity.QuantityIncrement
	})).Return(pricedCart(t, map[string]int{"a": 2, "b": 1}, []string{"a", "b"}, a, b), nil).Once()

	payload, err := svc.AddItem(context.Background(), testCartID, "b", "1")

	require.NoError(t, err)
	require.Len(t, payload.Products, 2)
	assert.True(t, decimal.NewFromInt(40).Equal(payload.TotalPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(payload.Products[0].TotalPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(payload.Products[1].TotalPrice))

	sum := decimal.Zero
	for _, line := range payload.Products {
		sum = sum.Add(line.TotalPrice)
	}
	assert.True(t, sum.Equal(payload.TotalPrice))
}

func TestCartService_AddItem_NonNumericQuantityIsZero(t *testing.T) {
	svc, repo, products := newTestCartService()
	a := testProduct("a", "10.0")

	products.On("GetProduct", mock.Anything, "a").Return(a, nil).Once()
	repo.On("UpsertItem", mock.Anything, mock.MatchedBy(func(p repository.UpsertItemParams) bool {
		return p.Quantity == 0 && p.Mode == entity.QuantityIncrement
	})).Return(entity.NewCart(testCartID, time.Now()), nil).Once()

	payload, err := svc.AddItem(context.Background(), testCartID, "a", "lots")

	require.NoError(t, err)
	assert.Empty(t, payload.Products)
	assert.NotNil(t, payload.Products)
	repo.AssertExpectations(t)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	svc, repo, products := newTestCartService()

	products.On("GetProduct", mock.Anything, "missing").
		Return(nil, fmt.Errorf("product missing: %w", entity.ErrProductNotFound)).Once()

	payload, err := svc.AddItem(context.Background(), testCartID, "missing", "1")

	assert.Nil(t, payload)
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
	repo.AssertNotCalled(t, "UpsertItem", mock.Anything, mock.Anything)
}

func TestCartService_AddItem_ProductGoneFromCatalogBehindCache(t *testing.T) {
	svc, repo, products := newTestCartService()

	products.On("GetProduct", mock.Anything, "a").Return(testProduct("a", "10.0"), nil).Once()
	repo.On("UpsertItem", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("product a: %w", entity.ErrProductNotFound)).Once()

	payload, err := svc.AddItem(context.Background(), testCartID, "a", "1")

	assert.Nil(t, payload)
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
	assert.NotErrorIs(t, err, entity.ErrCartNotFound)
	repo.AssertExpectations(t)
}

func TestCartService_SetItemQuantity_UsesSetMode(t *testing.T) {
	svc, repo, products := newTestCartService()
	a := testProduct("a", "10.0")

	products.On("GetProduct", mock.Anything, "a").Return(a, nil).Once()
	repo.On("UpsertItem", mock.Anything, repository.UpsertItemParams{
		CartID:    testCartID,
		ProductID: "a",
		Quantity:  5,
		Mode:      entity.QuantitySet,
	}).Return(pricedCart(t, map[string]int{"a": 5}, []string{"a"}, a), nil).Once()

	payload, err := svc.SetItemQuantity(context.Background(), testCartID, "a", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, payload.Products[0].Quantity)
	assert.True(t, decimal.NewFromInt(50).Equal(payload.TotalPrice))
	repo.AssertExpectations(t)
}

func TestCartService_SetItemQuantity_ZeroIsInvalid(t *testing.T) {
	svc, repo, products := newTestCartService()
	a := testProduct("a", "10.0")

	products.On("GetProduct", mock.Anything, "a").Return(a, nil).Once()
	repo.On("UpsertItem", mock.Anything, mock.Anything).Return(nil, entity.ErrInvalidQuantity).Once()

	payload, err := svc.SetItemQuantity(context.Background(), testCartID, "a", "0")

	assert.Nil(t, payload)
	assert.ErrorIs(t, err, entity.ErrInvalidQuantity)
}

func TestCartService_RemoveItem_NotInCart(t *testing.T) {
	svc, repo, _ := newTestCartService()
	a := testProduct("a", "10.0")

	repo.On("RemoveItem", mock.Anything, testCartID, "b").
		Return(false, pricedCart(t, map[string]int{"a": 1}, []string{"a"}, a), nil).Once()

	payload, err := svc.RemoveItem(context.Background(), testCartID, "b")

	assert.Nil(t, payload)
	assert.ErrorIs(t, err, entity.ErrItemNotFound)
}

func TestCartService_RemoveItem_Success(t *testing.T) {
	svc, repo, _ := newTestCartService()
	b := testProduct("b", "25.0")

	repo.On("RemoveItem", mock.Anything, testCartID, "a").
		Return(true, pricedCart(t, map[string]int{"b": 1}, []string{"b"}, b), nil).Once()

	payload, err := svc.RemoveItem(context.Background(), testCartID, "a")

	require.NoError(t, err)
	require.Len(t, payload.Products, 1)
	assert.Equal(t, "b", payload.Products[0].ID)
	assert.True(t, decimal.NewFromInt(25).Equal(payload.TotalPrice))
}

func TestCartService_GetCart_Empty(t *testing.T) {
	svc, repo, _ := newTestCartService()

	repo.On("GetByID", mock.Anything, testCartID).Return(entity.NewCart(testCartID, time.Now()), nil).Once()

	payload, err := svc.GetCart(context.Background(), testCartID)

	require.NoError(t, err)
	assert.NotNil(t, payload.Products)
	assert.Empty(t, payload.Products)
	assert.True(t, payload.TotalPrice.IsZero())
}

func TestCartService_GetCart_CartGone(t *testing.T) {
	svc, repo, _ := newTestCartService()

	repo.On("GetByID", mock.Anything, testCartID).Return(nil, repository.ErrNotFound).Once()

	_, err := svc.GetCart(context.Background(), testCartID)
	assert.ErrorIs(t, err, entity.ErrCartNotFound)
}

func TestCartService_RecomputeTotal_PersistenceFailure(t *testing.T) {
	svc, repo, _ := newTestCartService()
	dbErr := errors.New("connection reset")

	repo.On("RecomputeTotal", mock.Anything, testCartID).Return(nil, dbErr).Once()

	_, err := svc.RecomputeTotal(context.Background(), testCartID)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, entity.ErrCartNotFound)
}

func TestCartService_OptimisticLockPropagates(t *testing.T) {
	svc, repo, products := newTestCartService()

	products.On("GetProduct", mock.Anything, "a").Return(testProduct("a", "1"), nil).Once()
	repo.On("UpsertItem", mock.Anything, mock.Anything).Return(nil, repository.ErrOptimisticLock).Once()

	_, err := svc.AddItem(context.Background(), testCartID, "a", "1")
	assert.ErrorIs(t, err, repository.ErrOptimisticLock)
}
