package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type cartRepository struct {
	coll *mongo.Collection
	log  *logrus.Logger
}

func NewCartRepository(db *mongo.Database, logger *logrus.Logger) domain.CartRepository {
	return &cartRepository{
		coll: db.Collection(cartsCollection),
		log:  logger,
	}
}

func (r *cartRepository) GetCartByOwner(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var doc cartDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "owner_id", Value: ownerID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundf("cart not found")
		}
		r.log.Errorf("Failed to get cart for user %s: %v", ownerID, err)
		return nil, fmt.Errorf("could not get cart: %w", err)
	}
	return doc.toDomain(), nil
}

// SaveCart inserts a new cart or replaces the stored document only while its
// version still matches the one the caller read. The unique owner index turns
// a concurrent first write into a conflict.
func (r *cartRepository) SaveCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := newCartDoc(cart)
	doc.UpdatedAt = now
	doc.Version = cart.Version + 1

	if cart.Version == 0 {
		doc.CreatedAt = now
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				r.log.Warnf("Cart for user %s was created concurrently", cart.OwnerID)
				return nil, domain.Conflictf("cart for user %s already exists", cart.OwnerID)
			}
			r.log.Errorf("Failed to insert cart for user %s: %v", cart.OwnerID, err)
			return nil, fmt.Errorf("could not create cart: %w", err)
		}
	} else {
		filter := bson.D{{Key: "_id", Value: cart.ID}, {Key: "version", Value: cart.Version}}
		result, err := r.coll.ReplaceOne(ctx, filter, doc)
		if err != nil {
			r.log.Errorf("Failed to update cart %s: %v", cart.ID, err)
			return nil, fmt.Errorf("could not update cart: %w", err)
		}
		if result.MatchedCount == 0 {
			r.log.Warnf("Cart %s changed since version %d was read", cart.ID, cart.Version)
			return nil, domain.Conflictf("cart %s was modified concurrently", cart.ID)
		}
	}

	r.log.Infof("Cart %s saved at version %d with %d items", doc.ID, doc.Version, len(doc.Items))
	return doc.toDomain(), nil
}
