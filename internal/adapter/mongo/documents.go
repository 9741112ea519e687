package mongo

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cartItemDocument struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

type cartDocument struct {
	ID         string               `bson:"_id"`
	Items      []cartItemDocument   `bson:"items"`
	TotalPrice primitive.Decimal128 `bson:"total_price"`
	Abandoned  bool                 `bson:"abandoned"`
	Version    int                  `bson:"version"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
}

type productDocument struct {
	ID    string        `bson:"_id"`
	Name  string        `bson:"name"`
	Price bson.RawValue `bson:"price"`
}

func (d *cartDocument) toEntity() (*entity.Cart, error) {
	total, err := fromDecimal128(d.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("cart %s: invalid total_price: %w", d.ID, err)
	}

	items := make([]entity.CartItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, entity.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return &entity.Cart{
		ID:         d.ID,
		Items:      items,
		TotalPrice: total,
		Abandoned:  d.Abandoned,
		Version:    d.Version,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

func itemDocuments(items []entity.CartItem) []cartItemDocument {
	docs := make([]cartItemDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, cartItemDocument{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return docs
}

func (d *productDocument) toEntity() (*entity.Product, error) {
	price, err := decodePrice(d.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", d.ID, err)
	}
	return &entity.Product{ID: d.ID, Name: d.Name, Price: price}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	if d.IsZero() {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(d.String())
}

// decodePrice accepts Decimal128 as well as the numeric types catalog writers
// commonly use for prices.
func decodePrice(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Decimal128:
		return fromDecimal128(v.Decimal128())
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %s", v.Type)
	}
}
