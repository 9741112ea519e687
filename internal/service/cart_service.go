package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Abdurahmanit/GroupProject/cart-service/internal/service"

type LineItem struct {
	ID         string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// CartPayload is the externally visible shape of a cart. TotalPrice is the
// persisted cart total and always equals the sum of the line totals.
type CartPayload struct {
	ID         string
	Products   []LineItem
	TotalPrice decimal.Decimal
}

type CartService interface {
	AddItem(ctx context.Context, cartID, productID, rawQuantity string) (*CartPayload, error)
	SetItemQuantity(ctx context.Context, cartID, productID, rawQuantity string) (*CartPayload, error)
	RemoveItem(ctx context.Context, cartID, productID string) (*CartPayload, error)
	GetCart(ctx context.Context, cartID string) (*CartPayload, error)
	RecomputeTotal(ctx context.Context, cartID string) (*CartPayload, error)
}

type cartService struct {
	cartRepo repository.CartRepository
	products ProductService
	metrics  *metrics.MetricsManager
	log      logger.Logger
	tracer   trace.Tracer
}

func NewCartService(
	cartRepo repository.CartRepository,
	products ProductService,
	m *metrics.MetricsManager,
	log logger.Logger,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		products: products,
		metrics:  m,
		log:      log,
		tracer:   otel.Tracer(tracerName),
	}
}

func (s *cartService) AddItem(ctx context.Context, cartID, productID, rawQuantity string) (*CartPayload, error) {
	return s.upsert(ctx, "add_item", cartID, productID, rawQuantity, entity.QuantityIncrement)
}

func (s *cartService) SetItemQuantity(ctx context.Context, cartID, productID, rawQuantity string) (*CartPayload, error) {
	return s.upsert(ctx, "set_item_quantity", cartID, productID, rawQuantity, entity.QuantitySet)
}

func (s *cartService) upsert(ctx context.Context, op, cartID, productID, rawQuantity string, mode entity.QuantityMode) (payload *CartPayload, err error) {
	ctx, span := s.startSpan(ctx, op, cartID, attribute.String("product.id", productID))
	defer func() { s.finish(span, op, err) }()

	quantity := ParseQuantity(rawQuantity)
	s.log.Infof("Cart %s: %s product=%s quantity=%d", cartID, op, productID, quantity)

	if _, err = s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.UpsertItem(ctx, repository.UpsertItemParams{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		Mode:      mode,
	})
	if err != nil {
		return nil, s.storeError(cartID, op, err)
	}

	return buildPayload(cart), nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID string) (payload *CartPayload, err error) {
	const op = "remove_item"
	ctx, span := s.startSpan(ctx, op, cartID, attribute.String("product.id", productID))
	defer func() { s.finish(span, op, err) }()

	s.log.Infof("Cart %s: removing product %s", cartID, productID)

	removed, cart, err := s.cartRepo.RemoveItem(ctx, cartID, productID)
	if err != nil {
		return nil, s.storeError(cartID, op, err)
	}
	if !removed {
		return nil, fmt.Errorf("product %s: %w", productID, entity.ErrItemNotFound)
	}

	return buildPayload(cart), nil
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (payload *CartPayload, err error) {
	const op = "get_cart"
	ctx, span := s.startSpan(ctx, op, cartID)
	defer func() { s.finish(span, op, err) }()

	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, s.storeError(cartID, op, err)
	}
	return buildPayload(cart), nil
}

func (s *cartService) RecomputeTotal(ctx context.Context, cartID string) (payload *CartPayload, err error) {
	const op = "recompute_total"
	ctx, span := s.startSpan(ctx, op, cartID)
	defer func() { s.finish(span, op, err) }()

	cart, err := s.cartRepo.RecomputeTotal(ctx, cartID)
	if err != nil {
		return nil, s.storeError(cartID, op, err)
	}
	return buildPayload(cart), nil
}

// storeError maps store failures onto the service taxonomy. Anything not
// recognised stays a wrapped persistence failure.
func (s *cartService) storeError(cartID, op string, err error) error {
	switch {
	case errors.Is(err, entity.ErrInvalidQuantity), errors.Is(err, entity.ErrProductNotFound):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("cart %s: %w", cartID, entity.ErrCartNotFound)
	case errors.Is(err, repository.ErrOptimisticLock):
		s.log.Warnf("Cart %s: %s gave up after repeated concurrent updates", cartID, op)
		return err
	default:
		s.log.Errorf("Cart %s: %s failed: %v", cartID, op, err)
		return fmt.Errorf("could not %s: %w", op, err)
	}
}

func (s *cartService) startSpan(ctx context.Context, op, cartID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("cart.id", cartID))
	return s.tracer.Start(ctx, "CartService."+op, trace.WithAttributes(attrs...))
}

func (s *cartService) finish(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	s.metrics.ObserveCartOperation(op, err)
}

func buildPayload(cart *entity.Cart) *CartPayload {
	payload := &CartPayload{
		ID:         cart.ID,
		Products:   make([]LineItem, 0, len(cart.Items)),
		TotalPrice: cart.TotalPrice,
	}

	for _, item := range cart.Items {
		line := LineItem{
			ID:         item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  decimal.Zero,
			TotalPrice: item.LineTotal(),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.UnitPrice = item.Product.Price
		}
		payload.Products = append(payload.Products, line)
	}
	return payload
}
