package usecase

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/quad400/kaydee-boutique/internal/repository/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	admin    = &domain.Principal{ID: uuid.NewString(), Role: domain.RoleAdmin}
	customer = &domain.Principal{ID: uuid.NewString(), Role: domain.RoleCustomer}
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store      *memory.Store
	products   ProductUseCase
	categories CategoryUseCase
	carts      CartUseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	policy := NewRolePolicy()
	log := quietLogger()
	return &fixture{
		store:      store,
		products:   NewProductUseCase(store, store, policy, log),
		categories: NewCategoryUseCase(store, policy, log),
		carts:      NewCartUseCase(store, store, policy, log),
	}
}

func (f *fixture) product(t *testing.T, title string, price float64) *domain.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), admin, &domain.Product{Title: title, Price: price})
	require.NoError(t, err)
	return p
}
