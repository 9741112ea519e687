package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	cartCollectionName = "carts"
	maxMutateAttempts  = 10

	mutateInitialBackoff = 5 * time.Millisecond
	mutateMaxBackoff     = 200 * time.Millisecond
)

type cartRepository struct {
	collection *mongo.Collection
	products   repository.ProductRepository
	now        func() time.Time
}

// NewCartRepository stores each cart as a single document with its items embedded,
// so an item change and the new total are always written together. Concurrent
// writers are serialized per cart by a version number on the document.
func NewCartRepository(client *mongo.Client, cfg config.MongoDBConfig, products repository.ProductRepository) repository.CartRepository {
	return &cartRepository{
		collection: client.Database(cfg.Database).Collection(cartCollectionName),
		products:   products,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *cartRepository) GetOrCreate(ctx context.Context, idHint string) (*entity.Cart, error) {
	cartID := idHint
	if cartID == "" {
		cartID = uuid.NewString()
	}

	now := r.now()
	zero, err := toDecimal128(decimal.Zero)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": cartID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"items":       bson.A{},
			"total_price": zero,
			"abandoned":   false,
			"version":     1,
			"created_at":  now,
			"updated_at":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc cartDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		// Two upserts racing on the same id: the loser re-reads the winner's cart.
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByID(ctx, cartID)
		}
		return nil, fmt.Errorf("failed to get or create cart %s: %w", cartID, err)
	}

	return r.settle(ctx, &doc)
}

// GetByID returns the cart priced against the current catalog. If prices moved or
// products disappeared since the last write, the corrected total is persisted.
func (r *cartRepository) GetByID(ctx context.Context, cartID string) (*entity.Cart, error) {
	return r.mutate(ctx, cartID, "", noChange)
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, productID string) (*entity.CartItem, error) {
	doc, err := r.findDocument(ctx, cartID)
	if err != nil {
		return nil, err
	}
	for _, item := range doc.Items {
		if item.ProductID == productID {
			return &entity.CartItem{ProductID: item.ProductID, Quantity: item.Quantity}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *cartRepository) UpsertItem(ctx context.Context, params repository.UpsertItemParams) (*entity.Cart, error) {
	return r.mutate(ctx, params.CartID, params.ProductID, func(cart *entity.Cart) (bool, error) {
		return cart.ApplyQuantity(params.ProductID, params.Quantity, params.Mode)
	})
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID string) (bool, *entity.Cart, error) {
	var removed bool
	cart, err := r.mutate(ctx, cartID, "", func(cart *entity.Cart) (bool, error) {
		removed = cart.RemoveItem(productID)
		return removed, nil
	})
	if err != nil {
		return false, nil, err
	}
	return removed, cart, nil
}

func (r *cartRepository) RecomputeTotal(ctx context.Context, cartID string) (*entity.Cart, error) {
	return r.mutate(ctx, cartID, "", noChange)
}

func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": cartID})
	if err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", cartID, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *cartRepository) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	return r.listIDs(ctx, bson.M{"abandoned": false, "updated_at": bson.M{"$lt": before}})
}

func (r *cartRepository) ListAbandoned(ctx context.Context, before time.Time) ([]string, error) {
	return r.listIDs(ctx, bson.M{"abandoned": true, "updated_at": bson.M{"$lt": before}})
}

// MarkAbandoned flags the cart only if it is still idle, and leaves updated_at alone
// so the deletion window keeps counting from the last real activity. The version
// bump makes any mutation that read the cart before this write retry.
func (r *cartRepository) MarkAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error) {
	filter := bson.M{
		"_id":        cartID,
		"abandoned":  false,
		"updated_at": bson.M{"$lt": before},
	}
	update := bson.M{
		"$set": bson.M{"abandoned": true},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark cart %s as abandoned: %w", cartID, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *cartRepository) DeleteAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error) {
	filter := bson.M{
		"_id":        cartID,
		"abandoned":  true,
		"updated_at": bson.M{"$lt": before},
	}

	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete abandoned cart %s: %w", cartID, err)
	}
	return res.DeletedCount > 0, nil
}

type mutation func(cart *entity.Cart) (bool, error)

func noChange(*entity.Cart) (bool, error) { return false, nil }

// mutate is the per-cart transaction: read the document, apply fn, reprice every
// item, and write items and total back in one update guarded by the version read.
// A lost race re-runs the whole cycle against the fresh document after a jittered
// pause. When requireProduct is set and repricing drops that product, nothing is
// written and ErrProductNotFound is returned.
func (r *cartRepository) mutate(ctx context.Context, cartID, requireProduct string, fn mutation) (*entity.Cart, error) {
	retry := newMutateBackOff()

	for attempt := 1; attempt <= maxMutateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := r.findDocument(ctx, cartID)
		if err != nil {
			return nil, err
		}

		cart, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		storedTotal := cart.TotalPrice
		storedItems := len(cart.Items)

		changed, err := fn(cart)
		if err != nil {
			return nil, err
		}

		dropped, err := r.reprice(ctx, cart)
		if err != nil {
			return nil, err
		}
		if requireProduct != "" && slices.Contains(dropped, requireProduct) {
			return nil, fmt.Errorf("product %s: %w", requireProduct, entity.ErrProductNotFound)
		}

		if !changed && len(cart.Items) == storedItems && cart.TotalPrice.Equal(storedTotal) {
			return cart, nil
		}
		if changed {
			cart.Touch(r.now())
		}

		err = r.writeVersioned(ctx, cart, doc.Version)
		if errors.Is(err, repository.ErrOptimisticLock) {
			if attempt == maxMutateAttempts {
				break
			}
			if err := sleepCtx(ctx, retry.NextBackOff()); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		cart.Version = doc.Version + 1
		return cart, nil
	}
	return nil, fmt.Errorf("cart %s: %w", cartID, repository.ErrOptimisticLock)
}

func newMutateBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = mutateInitialBackoff
	b.MaxInterval = mutateMaxBackoff
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// settle prices a freshly read document, persisting the total through mutate
// when it no longer matches the catalog.
func (r *cartRepository) settle(ctx context.Context, doc *cartDocument) (*entity.Cart, error) {
	cart, err := doc.toEntity()
	if err != nil {
		return nil, err
	}
	storedTotal := cart.TotalPrice
	storedItems := len(cart.Items)

	if _, err := r.reprice(ctx, cart); err != nil {
		return nil, err
	}
	if cart.TotalPrice.Equal(storedTotal) && len(cart.Items) == storedItems {
		return cart, nil
	}
	return r.mutate(ctx, cart.ID, "", noChange)
}

func (r *cartRepository) reprice(ctx context.Context, cart *entity.Cart) ([]string, error) {
	products, err := r.products.GetByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load products for cart %s: %w", cart.ID, err)
	}
	dropped, err := cart.RecalculateTotal(products)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute total for cart %s: %w", cart.ID, err)
	}
	return dropped, nil
}

func (r *cartRepository) writeVersioned(ctx context.Context, cart *entity.Cart, version int) error {
	total, err := toDecimal128(cart.TotalPrice)
	if err != nil {
		return fmt.Errorf("cart %s: invalid total: %w", cart.ID, err)
	}

	filter := bson.M{"_id": cart.ID, "version": version}
	update := bson.M{
		"$set": bson.M{
			"items":       itemDocuments(cart.Items),
			"total_price": total,
			"abandoned":   cart.Abandoned,
			"updated_at":  cart.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart %s: %w", cart.ID, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": cart.ID})
	if err != nil {
		return fmt.Errorf("failed to check cart %s after update conflict: %w", cart.ID, err)
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrOptimisticLock
}

func (r *cartRepository) findDocument(ctx context.Context, cartID string) (*cartDocument, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": cartID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart %s: %w", cartID, err)
	}
	return &doc, nil
}

func (r *cartRepository) listIDs(ctx context.Context, filter bson.M) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode cart id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate carts: %w", err)
	}
	return ids, nil
}
