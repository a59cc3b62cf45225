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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type categoryRepository struct {
	coll     *mongo.Collection
	products *mongo.Collection
	log      *logrus.Logger
}

func NewCategoryRepository(db *mongo.Database, logger *logrus.Logger) domain.CategoryRepository {
	return &categoryRepository{
		coll:     db.Collection(categoriesCollection),
		products: db.Collection(productsCollection),
		log:      logger,
	}
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := categoryDoc{ID: category.ID, Title: category.Title, CreatedAt: now, UpdatedAt: now}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warnf("Attempted to create category with duplicate title: %s", category.Title)
			return nil, domain.Conflictf("category with title '%s' already exists", category.Title)
		}
		r.log.Errorf("Failed to create category '%s': %v", category.Title, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	created := doc.toDomain()
	r.log.Infof("Category created successfully with ID: %s, Title: %s", created.ID, created.Title)
	return &created, nil
}

func (r *categoryRepository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var doc categoryDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Category with ID %s not found", id)
			return nil, domain.NotFoundf("category with id %s not found", id)
		}
		r.log.Errorf("Failed to get category by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	category := doc.toDomain()
	return &category, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: category.Title},
		{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc categoryDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: category.ID}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Category with ID %s not found for update", category.ID)
			return nil, domain.NotFoundf("category with id %s not found for update", category.ID)
		}
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warnf("Attempted to rename category %s to duplicate title: %s", category.ID, category.Title)
			return nil, domain.Conflictf("category with title '%s' already exists", category.Title)
		}
		r.log.Errorf("Failed to update category ID %s: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	updated := doc.toDomain()
	r.log.Infof("Category updated successfully with ID: %s", updated.ID)
	return &updated, nil
}

// DeleteCategory removes the category and detaches every product that
// referenced it.
func (r *categoryRepository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		r.log.Errorf("Failed to delete category ID %s: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		r.log.Warnf("Attempted to delete non-existent category ID %s", id)
		return domain.NotFoundf("category with id %s not found for deletion", id)
	}

	detached, err := r.products.UpdateMany(ctx,
		bson.D{{Key: "category_id", Value: id}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "category_id", Value: ""}}}},
	)
	if err != nil {
		r.log.Errorf("Failed to detach products from deleted category %s: %v", id, err)
		return fmt.Errorf("could not detach products from category: %w", err)
	}
	r.log.Infof("Category deleted successfully with ID: %s (%d products detached)", id, detached.ModifiedCount)
	return nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer cur.Close(ctx)

	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		r.log.Errorf("Failed to decode categories: %v", err)
		return nil, fmt.Errorf("error decoding categories: %w", err)
	}
	categories := make([]domain.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, d.toDomain())
	}
	return categories, nil
}
