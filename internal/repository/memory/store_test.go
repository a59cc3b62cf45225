package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCart_VersionGuard(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	created, err := s.SaveCart(ctx, &domain.Cart{ID: "c1", OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)

	_, err = s.SaveCart(ctx, &domain.Cart{ID: "c2", OwnerID: "u1"})
	assert.True(t, errors.Is(err, domain.ErrConflict), "second cart for the same owner")

	first, _ := s.GetCartByOwner(ctx, "u1")
	second, _ := s.GetCartByOwner(ctx, "u1")

	_, err = s.SaveCart(ctx, first)
	require.NoError(t, err)
	_, err = s.SaveCart(ctx, second)
	assert.True(t, errors.Is(err, domain.ErrConflict), "stale version must not overwrite")
}

func TestDeleteCategory_DetachesProducts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.CreateCategory(ctx, &domain.Category{ID: "cat", Title: "Shoes"})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, &domain.Product{ID: "p1", Title: "Boot", CategoryID: "cat"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(ctx, "cat"))

	p, err := s.GetProductByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, p.CategoryID)
}

func TestCreateCategory_DuplicateTitle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.CreateCategory(ctx, &domain.Category{ID: "a", Title: "Hats"})
	require.NoError(t, err)

	_, err = s.CreateCategory(ctx, &domain.Category{ID: "b", Title: "hats"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestResolveSession_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.PutSession("live", domain.Principal{ID: "u1", Role: domain.RoleAdmin}, time.Now().Add(time.Hour))
	s.PutSession("stale", domain.Principal{ID: "u2"}, time.Now().Add(-time.Minute))

	p, err := s.ResolveSession(ctx, "live")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	_, err = s.ResolveSession(ctx, "stale")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestListProducts_ClampsOffset(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.CreateProduct(ctx, &domain.Product{ID: title, Title: title})
		require.NoError(t, err)
	}

	got, err := s.ListProducts(ctx, domain.ProductQuery{Skip: -5, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListProducts(ctx, domain.ProductQuery{Skip: 2, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.ListProducts(ctx, domain.ProductQuery{Skip: 9})
	require.NoError(t, err)
	assert.Empty(t, got)
}
