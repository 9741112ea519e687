package entity

import "github.com/shopspring/decimal"

// Product is a read-only catalog entry.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
