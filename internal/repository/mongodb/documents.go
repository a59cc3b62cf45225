// Package mongodb stores the catalog, carts and sessions in MongoDB.
// Document ids are the same canonical UUID strings the other backends use.
package mongodb

import (
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
	cartsCollection      = "carts"
	sessionsCollection   = "sessions"
)

type productDoc struct {
	ID          string                 `bson:"_id"`
	Title       string                 `bson:"title"`
	Description string                 `bson:"description"`
	Price       float64                `bson:"price"`
	CategoryID  string                 `bson:"category_id,omitempty"`
	Attributes  map[string]interface{} `bson:"attributes"`
	CreatedAt   time.Time              `bson:"created_at"`
	UpdatedAt   time.Time              `bson:"updated_at"`
	Version     int                    `bson:"version"`
}

func (d productDoc) toDomain() domain.Product {
	attributes := d.Attributes
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	return domain.Product{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		CategoryID:  d.CategoryID,
		Attributes:  attributes,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		Version:     d.Version,
	}
}

type categoryDoc struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d categoryDoc) toDomain() domain.Category {
	return domain.Category{
		ID:        d.ID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type cartItemDoc struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
	Size      string `bson:"size,omitempty"`
	Color     string `bson:"color,omitempty"`
}

type cartDoc struct {
	ID        string        `bson:"_id"`
	OwnerID   string        `bson:"owner_id"`
	Items     []cartItemDoc `bson:"items"`
	Total     float64       `bson:"total"`
	Version   int           `bson:"version"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func newCartDoc(c *domain.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	return cartDoc{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Items:     items,
		Total:     c.Total,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d cartDoc) toDomain() *domain.Cart {
	items := make([]domain.CartItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	return &domain.Cart{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Items:     items,
		Total:     d.Total,
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// sessionDoc is written by the identity service. The role is denormalised
// onto the session so resolving a token is a single lookup.
type sessionDoc struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Role      string    `bson:"role"`
	ExpiresAt time.Time `bson:"expires_at"`
}
