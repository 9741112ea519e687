package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type QuantityMode string

const (
	// QuantityIncrement adds to the existing quantity (0 when the item is absent).
	QuantityIncrement QuantityMode = "increment"
	// QuantitySet replaces the existing quantity.
	QuantitySet QuantityMode = "set"
)

type CartItem struct {
	ProductID string
	Quantity  int

	// Product is loaded alongside the item when the total is recomputed. It is not persisted.
	Product *Product
}

func (i CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID         string
	Items      []CartItem
	TotalPrice decimal.Decimal
	Abandoned  bool
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewCart(id string, now time.Time) *Cart {
	return &Cart{
		ID:         id,
		Items:      make([]CartItem, 0),
		TotalPrice: decimal.Zero,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (c *Cart) GetItem(productID string) (*CartItem, int) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return &c.Items[i], i
		}
	}
	return nil, -1
}

// ApplyQuantity changes the quantity of productID according to mode and reports
// whether the cart changed. An increment of zero is a no-op; any other change that
// would leave the item with a non-positive quantity is rejected with ErrInvalidQuantity
// and leaves the cart untouched.
func (c *Cart) ApplyQuantity(productID string, quantity int, mode QuantityMode) (bool, error) {
	item, _ := c.GetItem(productID)

	current := 0
	if item != nil {
		current = item.Quantity
	}

	var next int
	switch mode {
	case QuantityIncrement:
		if quantity == 0 {
			return false, nil
		}
		next = current + quantity
	case QuantitySet:
		next = quantity
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownQuantityMode, mode)
	}

	if next <= 0 {
		return false, ErrInvalidQuantity
	}

	if item == nil {
		c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: next})
		return true, nil
	}
	if item.Quantity == next {
		return false, nil
	}
	item.Quantity = next
	return true, nil
}

func (c *Cart) RemoveItem(productID string) bool {
	_, index := c.GetItem(productID)
	if index == -1 {
		return false
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return true
}

func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// RecalculateTotal attaches products to the items and sets TotalPrice to the sum of
// the line totals. Items whose product is no longer in the catalog cannot be priced
// and are dropped; their ids are returned.
func (c *Cart) RecalculateTotal(products map[string]*Product) ([]string, error) {
	var dropped []string
	kept := c.Items[:0]
	total := decimal.Zero

	for _, item := range c.Items {
		product, ok := products[item.ProductID]
		if !ok || product == nil {
			dropped = append(dropped, item.ProductID)
			continue
		}
		if product.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidPrice, product.ID)
		}
		item.Product = product
		total = total.Add(item.LineTotal())
		kept = append(kept, item)
	}

	c.Items = kept
	c.TotalPrice = total
	return dropped, nil
}

// Touch records user activity. Activity on an abandoned cart makes it active again.
func (c *Cart) Touch(now time.Time) {
	c.UpdatedAt = now
	c.Abandoned = false
}
