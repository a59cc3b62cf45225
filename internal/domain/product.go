// domain/product.go
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MaxPrice is the largest price every backend stores exactly.
var MaxPrice = decimal.New(1, 10).Sub(decimal.New(1, -2))

// Product field names as they appear in requests, responses and update maps.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldAttributes  = "attributes"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

type Product struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	CategoryID  string                 `json:"category"`
	Attributes  map[string]interface{} `json:"attributes"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
	Version     int                    `json:"-"`
}

// ValidatePrice accepts non-negative prices in whole cents up to MaxPrice.
func ValidatePrice(price float64) error {
	d := decimal.NewFromFloat(price)
	switch {
	case d.IsNegative():
		return Validationf("product price cannot be negative")
	case !d.Equal(d.Round(2)):
		return Validationf("product price %s has more than 2 decimal places", d.String())
	case d.GreaterThan(MaxPrice):
		return Validationf("product price cannot exceed %s", MaxPrice.StringFixed(2))
	}
	return nil
}

// ProductDetail is a product with its category reference expanded.
// A dangling reference leaves Category nil.
type ProductDetail struct {
	Product
	Category *Category `json:"category"`
}

// ProductRepository is implemented by every storage backend. Update maps are
// keyed by the Field* names and carry already-validated values.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]Product, error)
	UpdateProduct(ctx context.Context, id string, updates map[string]interface{}) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, query ProductQuery) ([]Product, error)
	CountProducts(ctx context.Context, query ProductQuery) (int64, error)
}

// Project returns the product as a JSON-ready map holding only the given
// fields. The id is always present.
func (p Product) Project(fields []string) map[string]interface{} {
	out := map[string]interface{}{FieldID: p.ID}
	for _, f := range fields {
		switch f {
		case FieldTitle:
			out[f] = p.Title
		case FieldDescription:
			out[f] = p.Description
		case FieldPrice:
			out[f] = p.Price
		case FieldCategory:
			out[f] = p.CategoryID
		case FieldAttributes:
			out[f] = p.Attributes
		case FieldCreatedAt:
			out[f] = p.CreatedAt
		case FieldUpdatedAt:
			out[f] = p.UpdatedAt
		}
	}
	return out
}
