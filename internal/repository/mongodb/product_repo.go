package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	coll *mongo.Collection
	log  *logrus.Logger
}

func NewProductRepository(db *mongo.Database, logger *logrus.Logger) domain.ProductRepository {
	return &productRepository{
		coll: db.Collection(productsCollection),
		log:  logger,
	}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := productDoc{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		CategoryID:  product.CategoryID,
		Attributes:  product.Attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warnf("Product with ID %s already exists", product.ID)
			return nil, domain.Conflictf("product with id %s already exists", product.ID)
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Title, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	created := doc.toDomain()
	r.log.Infof("Product created successfully with ID: %s, Title: %s", created.ID, created.Title)
	return &created, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Product with ID %s not found", id)
			return nil, domain.NotFoundf("product with id %s not found", id)
		}
		r.log.Errorf("Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	product := doc.toDomain()
	return &product, nil
}

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		r.log.Errorf("Failed to get %d products by ID: %v", len(ids), err)
		return nil, fmt.Errorf("could not get products by id: %w", err)
	}
	return r.collect(ctx, cur)
}

func (r *productRepository) UpdateProduct(ctx context.Context, id string, updates map[string]interface{}) (*domain.Product, error) {
	set, unset := buildProductUpdate(updates)
	if len(set) == 0 && len(unset) == 0 {
		r.log.Infof("Repository: No fields provided for product update ID %s. Returning current product.", id)
		return r.GetProductByID(ctx, id)
	}
	set = append(set, bson.E{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)})

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Repository: Product with ID %s not found for update", id)
			return nil, domain.NotFoundf("product with id %s not found for update", id)
		}
		r.log.Errorf("Repository: Failed to update product ID %s: %v", id, err)
		return nil, fmt.Errorf("could not partially update product: %w", err)
	}
	product := doc.toDomain()
	r.log.Infof("Repository: Partial update successful for product ID %s", id)
	return &product, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		r.log.Errorf("Failed to delete product ID %s: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %s", id)
		return domain.NotFoundf("product with id %s not found for deletion", id)
	}
	r.log.Infof("Product deleted successfully with ID: %s", id)
	return nil
}

func (r *productRepository) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	offset := q.Skip
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().
		SetSort(buildProductSort(q)).
		SetSkip(int64(offset))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := r.coll.Find(ctx, buildProductFilter(q), opts)
	if err != nil {
		r.log.Errorf("Failed to list products (limit %d, offset %d): %v", q.Limit, q.Skip, err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	products, err := r.collect(ctx, cur)
	if err != nil {
		return nil, err
	}
	r.log.Infof("Retrieved %d products (limit: %d, offset: %d)", len(products), q.Limit, q.Skip)
	return products, nil
}

func (r *productRepository) CountProducts(ctx context.Context, q domain.ProductQuery) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, buildProductFilter(q))
	if err != nil {
		r.log.Errorf("Failed to count products: %v", err)
		return 0, fmt.Errorf("could not count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) collect(ctx context.Context, cur *mongo.Cursor) ([]domain.Product, error) {
	defer cur.Close(ctx)
	products := []domain.Product{}
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			r.log.Errorf("Failed to decode product document: %v", err)
			return nil, fmt.Errorf("error decoding product data: %w", err)
		}
		products = append(products, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		r.log.Errorf("Error during products cursor iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
