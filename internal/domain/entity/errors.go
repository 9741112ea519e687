package entity

import "errors"

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrItemNotFound        = errors.New("product is not in the cart")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrInvalidPrice        = errors.New("product price must not be negative")
	ErrUnknownQuantityMode = errors.New("unknown quantity mode")
)
