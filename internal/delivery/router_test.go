package delivery

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/quad400/kaydee-boutique/internal/repository/memory"
	"github.com/quad400/kaydee-boutique/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	store         *memory.Store
	router        *gin.Engine
	adminToken    string
	customerToken string
}

func newTestServer() *testServer {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	policy := usecase.NewRolePolicy()
	s := &testServer{
		store:         store,
		adminToken:    uuid.NewString(),
		customerToken: uuid.NewString(),
	}
	expires := time.Now().Add(time.Hour)
	store.PutSession(s.adminToken, domain.Principal{ID: uuid.NewString(), Role: domain.RoleAdmin}, expires)
	store.PutSession(s.customerToken, domain.Principal{ID: uuid.NewString(), Role: domain.RoleCustomer}, expires)

	s.router = NewRouter(RouterConfig{
		Products:       usecase.NewProductUseCase(store, store, policy, log),
		Categories:     usecase.NewCategoryUseCase(store, policy, log),
		Carts:          usecase.NewCartUseCase(store, store, policy, log),
		Sessions:       store,
		RequestTimeout: time.Second,
	}, log)
	return s
}

type envelope struct {
	Status  string          `json:"Status"`
	Message string          `json:"Message"`
	Data    json.RawMessage `json:"Data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *testServer) createProduct(t *testing.T, title string, price float64) domain.Product {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/product", s.adminToken, map[string]interface{}{
		"title": title,
		"price": price,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var p domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer()

	code, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Success", env.Status)

	code, env = s.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Fail", env.Status)
	assert.Contains(t, env.Message, "/api/nowhere")
}

func TestProductWrites_RequireAdmin(t *testing.T) {
	s := newTestServer()
	body := map[string]interface{}{"title": "Boots", "price": 10}

	code, _ := s.do(t, http.MethodPost, "/api/product", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodPost, "/api/product", s.customerToken, body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Fail", env.Status)

	p := s.createProduct(t, "Boots", 10)

	code, _ = s.do(t, http.MethodPut, "/api/product/"+p.ID, s.customerToken, map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(t, http.MethodDelete, "/api/product/"+p.ID, s.customerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/product/"+p.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var got domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 10.0, got.Price)
}

func TestProductCRUD(t *testing.T) {
	s := newTestServer()
	p := s.createProduct(t, "Boots", 10)

	code, env := s.do(t, http.MethodPut, "/api/product/"+p.ID, s.adminToken, map[string]interface{}{"price": 12.5})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 12.5, updated.Price)

	code, _ = s.do(t, http.MethodPut, "/api/product/"+p.ID, s.adminToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodDelete, "/api/product/"+p.ID, s.adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/product/"+p.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodGet, "/api/product/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListProducts(t *testing.T) {
	s := newTestServer()
	for _, p := range []struct {
		title string
		price float64
	}{{"Red Shirt", 20}, {"Blue Shirt", 15}, {"Green Hat", 30}} {
		s.createProduct(t, p.title, p.price)
	}

	code, env := s.do(t, http.MethodGet, "/api/product?search=shirt&sort=price&fields=title,price", "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var page struct {
		Products []map[string]interface{} `json:"products"`
		Total    int64                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Products, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "Blue Shirt", page.Products[0]["title"])
	assert.NotContains(t, page.Products[0], "description")
	assert.Contains(t, page.Products[0], "id")

	code, _ = s.do(t, http.MethodGet, "/api/product?owner=me", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/api/product?price[gte]=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/product?page=3&limit=2", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "This page does not exist", env.Message)

	code, env = s.do(t, http.MethodGet, "/api/product?page=1&price[gte]=1000", "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Products)
	assert.Equal(t, int64(0), page.Total)

	code, _ = s.do(t, http.MethodGet, "/api/product?page=100000000000000000&limit=100", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(t, http.MethodGet, "/api/product", "", nil)
	assert.Equal(t, http.StatusOK, code, "server keeps answering")
}

func TestCategoryRoutes(t *testing.T) {
	s := newTestServer()

	code, env := s.do(t, http.MethodPost, "/api/category", s.adminToken, map[string]string{"title": "Shoes"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var cat domain.Category
	require.NoError(t, json.Unmarshal(env.Data, &cat))

	code, _ = s.do(t, http.MethodPost, "/api/category", s.adminToken, map[string]string{"title": "shoes"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPut, "/api/category/"+cat.ID, s.customerToken, map[string]string{"title": "Boots"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPut, "/api/category/"+cat.ID, s.adminToken, map[string]string{"title": "Boots"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/category", "", nil)
	require.Equal(t, http.StatusOK, code)
	var all []domain.Category
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 1)
	assert.Equal(t, "Boots", all[0].Title)

	code, _ = s.do(t, http.MethodDelete, "/api/category/"+cat.ID, s.adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/category/"+cat.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCartRoutes(t *testing.T) {
	s := newTestServer()
	shirt := s.createProduct(t, "Shirt", 10)
	hat := s.createProduct(t, "Hat", 9.99)

	code, _ := s.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodGet, "/api/cart", s.customerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, env.Data)

	add := func(productID string, qty int) (int, domain.CartView) {
		code, env := s.do(t, http.MethodPost, "/api/cart", s.customerToken, map[string]interface{}{
			"productId": productID,
			"quantity":  qty,
			"size":      "M",
		})
		var view domain.CartView
		if code == http.StatusOK {
			require.NoError(t, json.Unmarshal(env.Data, &view))
		}
		return code, view
	}

	code, view := add(shirt.ID, 2)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20.0, view.Total)

	code, view = add(hat.ID, 1)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 29.99, view.Total)
	require.Len(t, view.Items, 2)
	require.NotNil(t, view.Items[1].Product)
	assert.Equal(t, "Hat", view.Items[1].Product.Title)

	code, _ = add(shirt.ID, 0)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = add(uuid.NewString(), 1)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodDelete, "/api/cart/"+shirt.ID, s.customerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 9.99, view.Total)

	code, env = s.do(t, http.MethodDelete, "/api/cart", s.customerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Total)
}

func TestFaultBoundaryReportsPanics(t *testing.T) {
	var faults []error
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := memory.NewStore()
	router := NewRouter(RouterConfig{
		Products:   usecase.NewProductUseCase(store, store, usecase.NewRolePolicy(), log),
		Categories: usecase.NewCategoryUseCase(store, usecase.NewRolePolicy(), log),
		Carts:      usecase.NewCartUseCase(store, store, usecase.NewRolePolicy(), log),
		Sessions:   store,
		OnFault:    func(err error) { faults = append(faults, err) },
	}, log)
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, faults, 1)
}
