package domain

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Cart belongs to exactly one owner. Total is derived from the items and the
// prices current at the last mutation; it is never trusted from storage when
// the cart changes.
type Cart struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	Version   int        `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartRepository persists carts. SaveCart inserts a cart whose Version is 0
// and otherwise updates it only if the stored version still matches,
// returning an ErrConflict error when it does not. On success the returned
// cart carries the new version.
type CartRepository interface {
	GetCartByOwner(ctx context.Context, ownerID string) (*Cart, error)
	SaveCart(ctx context.Context, cart *Cart) (*Cart, error)
}

// MaxItemQuantity bounds a single cart line; storage keeps quantities as
// 32-bit integers.
const MaxItemQuantity = math.MaxInt32

// AddItem merges by product id only: a repeat add increases the quantity and
// leaves the existing size and color untouched. The cart is unchanged when the
// quantity is not positive or the merged line would exceed MaxItemQuantity.
func (c *Cart) AddItem(productID string, quantity int, size, color string) error {
	if quantity <= 0 || quantity > MaxItemQuantity {
		return Validationf("quantity must be between 1 and %d", MaxItemQuantity)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if c.Items[i].Quantity > MaxItemQuantity-quantity {
				return Validationf("cart line for product %s cannot exceed %d items", productID, MaxItemQuantity)
			}
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	})
	return nil
}

// RemoveProduct drops every line referencing the product and reports whether
// anything was removed.
func (c *Cart) RemoveProduct(productID string) bool {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(c.Items)
	c.Items = kept
	return removed
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Total = 0
}

// ProductIDs lists the distinct products referenced by the cart in line order.
func (c *Cart) ProductIDs() []string {
	seen := make(map[string]struct{}, len(c.Items))
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Recompute sets Total to the sum of quantity times each line's own price.
// Lines whose product has no price (the product is gone) are pruned and
// their product ids returned.
func (c *Cart) Recompute(prices map[string]float64) []string {
	var pruned []string
	total := decimal.Zero
	kept := c.Items[:0]
	for _, item := range c.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			pruned = append(pruned, item.ProductID)
			continue
		}
		line := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
		kept = append(kept, item)
	}
	c.Items = kept
	c.Total = total.Round(2).InexactFloat64()
	return pruned
}

type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
	Size     string   `json:"size,omitempty"`
	Color    string   `json:"color,omitempty"`
}

// CartView is a cart with every line's product reference expanded.
type CartView struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner"`
	Items     []CartLine `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Expand builds the view from products keyed by id. A missing product leaves
// the line's Product nil.
func (c *Cart) Expand(products map[string]Product) *CartView {
	view := &CartView{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Items:     make([]CartLine, 0, len(c.Items)),
		Total:     c.Total,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, item := range c.Items {
		line := CartLine{Quantity: item.Quantity, Size: item.Size, Color: item.Color}
		if p, ok := products[item.ProductID]; ok {
			p := p
			line.Product = &p
		}
		view.Items = append(view.Items, line)
	}
	return view
}
