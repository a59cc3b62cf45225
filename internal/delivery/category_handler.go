package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/quad400/kaydee-boutique/internal/middleware"
	"github.com/quad400/kaydee-boutique/internal/usecase"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(public, protected gin.IRouter) {
	public.GET("/category", h.ListCategories)
	public.GET("/category/:id", h.GetCategoryByID)

	categories := protected.Group("/category")
	{
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		h.log.Warnf("Failed to bind JSON for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateCategory(c.Request.Context(), middleware.PrincipalFrom(c), &category)
	if err != nil {
		failWith(c, h.log, "create category '"+category.Title+"'", err)
		return
	}

	h.log.Infof("Category created successfully: ID %s, Title %s", created.ID, created.Title)
	SuccessResponse(c, http.StatusCreated, "Category created successfully", created)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id := c.Param("id")
	category, err := h.useCase.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "get category "+id, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		h.log.Warnf("Failed to bind JSON for update category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	category.ID = c.Param("id")

	updated, err := h.useCase.UpdateCategory(c.Request.Context(), middleware.PrincipalFrom(c), &category)
	if err != nil {
		failWith(c, h.log, "update category "+category.ID, err)
		return
	}

	h.log.Infof("Category updated successfully: ID %s", updated.ID)
	SuccessResponse(c, http.StatusOK, "Category updated successfully", updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	if err := h.useCase.DeleteCategory(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		failWith(c, h.log, "delete category "+id, err)
		return
	}

	h.log.Infof("Category deleted successfully: ID %s", id)
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		failWith(c, h.log, "list categories", err)
		return
	}
	if len(categories) == 0 {
		SuccessResponse(c, http.StatusOK, "No categories found", []domain.Category{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}
