package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// caseInsensitive compares strings ignoring case, matching the Postgres
// unique index on lower(title).
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		categoriesCollection: {
			{
				Keys:    bson.D{{Key: "title", Value: 1}},
				Options: options.Index().SetName("categories_title_unique").SetUnique(true).SetCollation(caseInsensitive),
			},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "category_id", Value: 1}}, Options: options.Index().SetName("products_category_id")},
			{Keys: bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("products_price")},
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("products_created_at")},
		},
		cartsCollection: {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}},
				Options: options.Index().SetName("carts_owner_unique").SetUnique(true),
			},
		},
		sessionsCollection: {
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("sessions_expiry").SetExpireAfterSeconds(0),
			},
		},
	}
}

// EnsureIndexes creates the indexes every repository relies on. Creating an
// index that already exists with the same definition is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range indexModels() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
