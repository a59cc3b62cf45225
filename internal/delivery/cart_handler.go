package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quad400/kaydee-boutique/internal/middleware"
	"github.com/quad400/kaydee-boutique/internal/usecase"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	useCase usecase.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc usecase.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterRoutes mounts every cart route on protected; a cart always belongs
// to the authenticated caller.
func (h *CartHandler) RegisterRoutes(protected gin.IRouter) {
	cart := protected.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddToCart)
		cart.DELETE("", h.EmptyCart)
		cart.DELETE("/:productId", h.RemoveFromCart)
	}
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req usecase.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for add to cart: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.useCase.AddToCart(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		failWith(c, h.log, "add product "+req.ProductID+" to cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product added to cart", cart)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID := c.Param("productId")
	cart, err := h.useCase.RemoveFromCart(c.Request.Context(), middleware.PrincipalFrom(c), productID)
	if err != nil {
		failWith(c, h.log, "remove product "+productID+" from cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product removed from cart", cart)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.useCase.GetCart(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		failWith(c, h.log, "get cart", err)
		return
	}
	if cart == nil {
		SuccessResponse(c, http.StatusOK, "Cart is empty", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) EmptyCart(c *gin.Context) {
	cart, err := h.useCase.EmptyCart(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		failWith(c, h.log, "empty cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart emptied", cart)
}
