// Package memory keeps the catalog, carts and sessions in process memory.
// It backs STORAGE_DRIVER=memory and the use case and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"
)

type session struct {
	principal domain.Principal
	expiresAt time.Time
}

var (
	_ domain.ProductRepository  = (*Store)(nil)
	_ domain.CategoryRepository = (*Store)(nil)
	_ domain.CartRepository     = (*Store)(nil)
	_ domain.SessionRepository  = (*Store)(nil)
)

// Store implements the product, category, cart and session repositories.
type Store struct {
	mu         sync.RWMutex
	products   map[string]domain.Product
	categories map[string]domain.Category
	carts      map[string]domain.Cart // keyed by owner
	sessions   map[string]session
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		products:   make(map[string]domain.Product),
		categories: make(map[string]domain.Category),
		carts:      make(map[string]domain.Cart),
		sessions:   make(map[string]session),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PutSession registers a bearer token for a principal.
func (s *Store) PutSession(token string, principal domain.Principal, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{principal: principal, expiresAt: expiresAt}
}

func (s *Store) ResolveSession(_ context.Context, token string) (*domain.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || !s.now().Before(sess.expiresAt) {
		return nil, domain.Unauthorizedf("invalid or expired token")
	}
	p := sess.principal
	return &p, nil
}

func (s *Store) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	p := cloneProduct(*product)
	p.CreatedAt, p.UpdatedAt, p.Version = now, now, 1
	s.products[p.ID] = p
	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.NotFoundf("product with id %s not found", id)
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (s *Store) UpdateProduct(_ context.Context, id string, updates map[string]interface{}) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.NotFoundf("product with id %s not found for update", id)
	}
	for key, value := range updates {
		switch key {
		case domain.FieldTitle:
			p.Title = value.(string)
		case domain.FieldDescription:
			p.Description = value.(string)
		case domain.FieldPrice:
			p.Price = value.(float64)
		case domain.FieldCategory:
			p.CategoryID = value.(string)
		case domain.FieldAttributes:
			p.Attributes = value.(map[string]interface{})
		}
	}
	p.UpdatedAt = s.now()
	p.Version++
	s.products[id] = cloneProduct(p)
	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.NotFoundf("product with id %s not found for deletion", id)
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListProducts(_ context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.match(query)
	sort.SliceStable(matched, func(i, j int) bool { return query.Less(matched[i], matched[j]) })

	offset := query.Skip
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.Product{}, nil
	}
	end := len(matched)
	if query.Limit > 0 && query.Limit < end-offset {
		end = offset + query.Limit
	}
	return matched[offset:end], nil
}

func (s *Store) CountProducts(_ context.Context, query domain.ProductQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.match(query))), nil
}

func (s *Store) match(query domain.ProductQuery) []domain.Product {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if query.Matches(p) {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

func (s *Store) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.titleTaken(category.Title, "") {
		return nil, domain.Conflictf("category with title '%s' already exists", category.Title)
	}
	now := s.now()
	c := *category
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories[c.ID] = c
	return &c, nil
}

func (s *Store) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, domain.NotFoundf("category with id %s not found", id)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[category.ID]
	if !ok {
		return nil, domain.NotFoundf("category with id %s not found for update", category.ID)
	}
	if s.titleTaken(category.Title, category.ID) {
		return nil, domain.Conflictf("category with title '%s' already exists", category.Title)
	}
	c.Title = category.Title
	c.UpdatedAt = s.now()
	s.categories[c.ID] = c
	return &c, nil
}

// DeleteCategory also detaches the category from its products.
func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.NotFoundf("category with id %s not found for deletion", id)
	}
	delete(s.categories, id)
	for pid, p := range s.products {
		if p.CategoryID == id {
			p.CategoryID = ""
			s.products[pid] = p
		}
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) titleTaken(title, exceptID string) bool {
	for id, c := range s.categories {
		if id != exceptID && strings.EqualFold(c.Title, title) {
			return true
		}
	}
	return false
}

func (s *Store) GetCartByOwner(_ context.Context, ownerID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[ownerID]
	if !ok {
		return nil, domain.NotFoundf("cart not found")
	}
	out := cloneCart(c)
	return &out, nil
}

func (s *Store) SaveCart(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, exists := s.carts[cart.OwnerID]
	switch {
	case cart.Version == 0 && exists:
		return nil, domain.Conflictf("cart for user %s already exists", cart.OwnerID)
	case cart.Version != 0 && (!exists || stored.Version != cart.Version):
		return nil, domain.Conflictf("cart %s was modified concurrently", cart.ID)
	}

	now := s.now()
	c := cloneCart(*cart)
	if !exists {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.Version++
	s.carts[c.OwnerID] = c
	out := cloneCart(c)
	return &out, nil
}

func cloneProduct(p domain.Product) domain.Product {
	if p.Attributes != nil {
		attrs := make(map[string]interface{}, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		p.Attributes = attrs
	}
	return p
}

func cloneCart(c domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
