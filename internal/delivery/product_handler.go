package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/quad400/kaydee-boutique/internal/middleware"
	"github.com/quad400/kaydee-boutique/internal/usecase"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterRoutes mounts reads on public and writes on protected, which must
// already run the authentication middleware.
func (h *ProductHandler) RegisterRoutes(public, protected gin.IRouter) {
	public.GET("/product", h.ListProducts)
	public.GET("/product/:id", h.GetProductByID)

	products := protected.Group("/product")
	{
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		h.log.Warnf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), middleware.PrincipalFrom(c), &product)
	if err != nil {
		failWith(c, h.log, "create product '"+product.Title+"'", err)
		return
	}

	h.log.Infof("Product created successfully: ID %s, Title %s", created.ID, created.Title)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id := c.Param("id")
	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "get product "+id, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.log.Warnf("Failed to bind JSON for update product ID %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(updates) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: no fields provided for update")
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), middleware.PrincipalFrom(c), id, updates)
	if err != nil {
		failWith(c, h.log, "update product "+id, err)
		return
	}

	h.log.Infof("Product updated successfully: ID %s", updated.ID)
	SuccessResponse(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.useCase.DeleteProduct(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		failWith(c, h.log, "delete product "+id, err)
		return
	}

	h.log.Infof("Product deleted successfully: ID %s", id)
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

// ListProducts serves filtered, searched, sorted, projected and paginated
// listings. Query keys outside the allow-list are rejected before storage is
// queried.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params, err := usecase.ParseListParams(c.Request.URL.Query())
	if err != nil {
		failWith(c, h.log, "parse product listing", err)
		return
	}

	page, err := h.useCase.ListProducts(c.Request.Context(), params)
	if err != nil {
		failWith(c, h.log, "list products", err)
		return
	}

	h.log.Infof("Retrieved %d of %d products (page %d)", len(page.Products), page.Total, page.Page)
	if len(page.Products) == 0 {
		SuccessResponse(c, http.StatusOK, "No products found matching criteria", page)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", page)
}
