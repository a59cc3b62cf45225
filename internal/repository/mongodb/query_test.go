package mongodb

import (
	"testing"
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildProductFilter_Empty(t *testing.T) {
	assert.Equal(t, bson.D{}, buildProductFilter(domain.ProductQuery{}))
}

func TestBuildProductFilter(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := domain.ProductQuery{
		Filters: []domain.ProductFilter{
			{Field: domain.FieldPrice, Op: domain.OpGte, Value: 10.0},
			{Field: domain.FieldPrice, Op: domain.OpLt, Value: 50.0},
			{Field: domain.FieldCreatedAt, Op: domain.OpGt, Value: since},
			{Field: "version", Op: domain.OpEq, Value: 3},
		},
		Search: "a.b(",
	}

	want := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "price", Value: bson.D{{Key: "$gte", Value: 10.0}}}},
		bson.D{{Key: "price", Value: bson.D{{Key: "$lt", Value: 50.0}}}},
		bson.D{{Key: "created_at", Value: bson.D{{Key: "$gt", Value: since}}}},
		bson.D{{Key: "title", Value: bson.D{
			{Key: "$regex", Value: `a\.b\(`},
			{Key: "$options", Value: "i"},
		}}},
	}}}
	assert.Equal(t, want, buildProductFilter(q))
}

func TestBuildProductSort_AppendsIDTieBreak(t *testing.T) {
	got := buildProductSort(domain.ProductQuery{Sort: []domain.SortKey{
		{Field: domain.FieldPrice},
		{Field: domain.FieldCreatedAt, Desc: true},
	}})
	assert.Equal(t, bson.D{
		{Key: "price", Value: 1},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: 1},
	}, got)

	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, buildProductSort(domain.ProductQuery{}))
}

func TestBuildProductUpdate(t *testing.T) {
	set, unset := buildProductUpdate(map[string]interface{}{
		domain.FieldTitle:     "Renamed",
		domain.FieldPrice:     12.5,
		domain.FieldCategory:  "",
		domain.FieldCreatedAt: time.Now(),
	})
	assert.Equal(t, bson.D{
		{Key: "price", Value: 12.5},
		{Key: "title", Value: "Renamed"},
	}, set)
	assert.Equal(t, bson.D{{Key: "category_id", Value: ""}}, unset)
}

func TestCartDocRoundTripKeepsLineOrder(t *testing.T) {
	cart := &domain.Cart{
		ID:      "c1",
		OwnerID: "u1",
		Items: []domain.CartItem{
			{ProductID: "p2", Quantity: 1, Color: "red"},
			{ProductID: "p1", Quantity: 3, Size: "M"},
		},
		Total:   42.5,
		Version: 2,
	}
	got := newCartDoc(cart).toDomain()
	assert.Equal(t, cart.Items, got.Items)
	assert.Equal(t, 2, got.Version)
}
