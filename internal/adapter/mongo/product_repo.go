package mongo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productCollectionName  = "products"
	defaultProductPageSize = 50
)

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ProductRepository {
	return &productRepository{
		collection: client.Database(cfg.Database).Collection(productCollectionName),
	}
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	var doc productDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	return doc.toEntity()
}

// GetByIDs returns the products that exist, keyed by id. Unknown ids are absent
// from the map rather than an error.
func (r *productRepository) GetByIDs(ctx context.Context, productIDs []string) (map[string]*entity.Product, error) {
	products := make(map[string]*entity.Product, len(productIDs))
	if len(productIDs) == 0 {
		return products, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": productIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		product, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		products[product.ID] = product
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// pageSkip is the number of documents before page, saturating instead of overflowing.
func pageSkip(page, pageSize int) int64 {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	prior, size := int64(page-1), int64(pageSize)
	if prior > math.MaxInt64/size {
		return math.MaxInt64
	}
	return prior * size
}

func (r *productRepository) List(ctx context.Context, params repository.ListProductsParams) ([]entity.Product, error) {
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultProductPageSize
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(pageSkip(page, pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]entity.Product, 0)
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		product, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
