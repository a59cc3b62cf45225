package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/sirupsen/logrus"
)

type CartUseCase interface {
	AddToCart(ctx context.Context, principal *domain.Principal, req AddToCartRequest) (*domain.CartView, error)
	RemoveFromCart(ctx context.Context, principal *domain.Principal, productID string) (*domain.CartView, error)
	GetCart(ctx context.Context, principal *domain.Principal) (*domain.CartView, error)
	EmptyCart(ctx context.Context, principal *domain.Principal) (*domain.CartView, error)
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type cartUseCase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	policy      Policy
	log         *logrus.Logger
}

func NewCartUseCase(cartRepo domain.CartRepository, productRepo domain.ProductRepository, policy Policy, logger *logrus.Logger) CartUseCase {
	return &cartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		policy:      policy,
		log:         logger,
	}
}

func (uc *cartUseCase) AddToCart(ctx context.Context, principal *domain.Principal, req AddToCartRequest) (*domain.CartView, error) {
	if err := uc.policy.CanUseCart(principal); err != nil {
		return nil, err
	}
	productID, err := parseID("product", req.ProductID)
	if err != nil {
		uc.log.Warnf("Use Case: Add to cart with invalid product ID: %v", err)
		return nil, err
	}
	if req.Quantity <= 0 || req.Quantity > domain.MaxItemQuantity {
		uc.log.Warnf("Use Case: Add to cart with out of range quantity %d for user %s", req.Quantity, principal.ID)
		return nil, domain.Validationf("quantity must be a positive integer no greater than %d", domain.MaxItemQuantity)
	}

	if _, err := uc.productRepo.GetProductByID(ctx, productID); err != nil {
		uc.log.Warnf("Use Case: Product %s not available for cart of user %s: %v", productID, principal.ID, err)
		return nil, err
	}

	cart, err := uc.cartRepo.GetCartByOwner(ctx, principal.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		uc.log.Infof("Use Case: Creating cart for user %s", principal.ID)
		cart = &domain.Cart{ID: uuid.NewString(), OwnerID: principal.ID, Items: []domain.CartItem{}}
	case err != nil:
		uc.log.Errorf("Use Case: Failed to load cart for user %s: %v", principal.ID, err)
		return nil, err
	}

	if err := cart.AddItem(productID, req.Quantity, req.Size, req.Color); err != nil {
		uc.log.Warnf("Use Case: Add to cart rejected for user %s: %v", principal.ID, err)
		return nil, err
	}
	return uc.recomputeAndSave(ctx, cart)
}

func (uc *cartUseCase) RemoveFromCart(ctx context.Context, principal *domain.Principal, productID string) (*domain.CartView, error) {
	if err := uc.policy.CanUseCart(principal); err != nil {
		return nil, err
	}
	productID, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}

	cart, err := uc.cartRepo.GetCartByOwner(ctx, principal.ID)
	if err != nil {
		uc.log.Warnf("Use Case: Remove from cart failed for user %s: %v", principal.ID, err)
		return nil, err
	}

	if !cart.RemoveProduct(productID) {
		uc.log.Infof("Use Case: Product %s not in cart of user %s, nothing to remove", productID, principal.ID)
		return uc.expand(ctx, cart)
	}
	return uc.recomputeAndSave(ctx, cart)
}

// GetCart returns nil without error when the user has no cart yet.
func (uc *cartUseCase) GetCart(ctx context.Context, principal *domain.Principal) (*domain.CartView, error) {
	if err := uc.policy.CanUseCart(principal); err != nil {
		return nil, err
	}
	cart, err := uc.cartRepo.GetCartByOwner(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		uc.log.Errorf("Use Case: Failed to load cart for user %s: %v", principal.ID, err)
		return nil, err
	}
	return uc.expand(ctx, cart)
}

func (uc *cartUseCase) EmptyCart(ctx context.Context, principal *domain.Principal) (*domain.CartView, error) {
	if err := uc.policy.CanUseCart(principal); err != nil {
		return nil, err
	}
	cart, err := uc.cartRepo.GetCartByOwner(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		uc.log.Errorf("Use Case: Failed to load cart for user %s: %v", principal.ID, err)
		return nil, err
	}

	cart.Clear()
	saved, err := uc.cartRepo.SaveCart(ctx, cart)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to empty cart %s: %v", cart.ID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Cart %s emptied for user %s", saved.ID, principal.ID)
	return saved.Expand(nil), nil
}

// recomputeAndSave reprices every line from freshly read products before the
// cart is written, so the stored total always reflects current prices.
func (uc *cartUseCase) recomputeAndSave(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	products, err := uc.productsByID(ctx, cart)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(products))
	for id, p := range products {
		prices[id] = p.Price
	}
	if pruned := cart.Recompute(prices); len(pruned) > 0 {
		uc.log.Warnf("Use Case: Dropped lines for deleted products %v from cart %s", pruned, cart.ID)
	}

	saved, err := uc.cartRepo.SaveCart(ctx, cart)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to save cart %s: %v", cart.ID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Cart %s saved with %d lines, total %.2f", saved.ID, len(saved.Items), saved.Total)
	return saved.Expand(products), nil
}

func (uc *cartUseCase) expand(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	products, err := uc.productsByID(ctx, cart)
	if err != nil {
		return nil, err
	}
	return cart.Expand(products), nil
}

func (uc *cartUseCase) productsByID(ctx context.Context, cart *domain.Cart) (map[string]domain.Product, error) {
	ids := cart.ProductIDs()
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := uc.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load products for cart %s: %v", cart.ID, err)
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
