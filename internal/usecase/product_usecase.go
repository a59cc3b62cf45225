package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(ctx context.Context, principal *domain.Principal, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.ProductDetail, error)
	UpdateProduct(ctx context.Context, principal *domain.Principal, id string, updates map[string]interface{}) (*domain.Product, error)
	DeleteProduct(ctx context.Context, principal *domain.Principal, id string) error
	ListProducts(ctx context.Context, params ListParams) (*ProductPage, error)
}

// ProductPage is one page of a catalog listing, projected to the requested
// fields.
type ProductPage struct {
	Products []map[string]interface{} `json:"products"`
	Page     int                      `json:"page"`
	Limit    int                      `json:"limit"`
	Total    int64                    `json:"total"`
}

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	policy       Policy
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, policy Policy, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		policy:       policy,
		log:          logger,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, principal *domain.Principal, product *domain.Product) (*domain.Product, error) {
	if err := uc.policy.CanManageCatalog(principal); err != nil {
		uc.log.Warnf("Use Case: Product creation denied: %v", err)
		return nil, err
	}
	if product.Title == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty title")
		return nil, domain.Validationf("product title cannot be empty")
	}
	if err := domain.ValidatePrice(product.Price); err != nil {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with invalid price %f: %v", product.Title, product.Price, err)
		return nil, err
	}
	if product.CategoryID != "" {
		categoryID, err := uc.ensureCategory(ctx, product.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if product.Attributes == nil {
		product.Attributes = map[string]interface{}{}
	}
	product.ID = uuid.NewString()

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Title)
	createdProduct, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Title, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %s", createdProduct.Title, createdProduct.ID)
	return createdProduct, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id string) (*domain.ProductDetail, error) {
	id, err := parseID("product", id)
	if err != nil {
		uc.log.Warnf("Use Case: Attempted to get product with invalid ID: %v", err)
		return nil, err
	}

	product, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %s: %v", id, err)
		return nil, err
	}

	detail := &domain.ProductDetail{Product: *product}
	if product.CategoryID != "" {
		category, err := uc.categoryRepo.GetCategoryByID(ctx, product.CategoryID)
		switch {
		case err == nil:
			detail.Category = category
		case errors.Is(err, domain.ErrNotFound):
			uc.log.Warnf("Use Case: Product %s references missing category %s", id, product.CategoryID)
		default:
			uc.log.Errorf("Use Case: Failed to populate category for product %s: %v", id, err)
			return nil, err
		}
	}

	uc.log.Infof("Use Case: Product retrieved successfully for ID %s", id)
	return detail, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, principal *domain.Principal, id string, updates map[string]interface{}) (*domain.Product, error) {
	if err := uc.policy.CanManageCatalog(principal); err != nil {
		uc.log.Warnf("Use Case: Product update denied for ID %s: %v", id, err)
		return nil, err
	}
	id, err := parseID("product", id)
	if err != nil {
		uc.log.Warnf("Use Case: Attempted update with invalid product ID: %v", err)
		return nil, err
	}
	if len(updates) == 0 {
		uc.log.Warnf("Use Case: Attempted update for product ID %s with no fields", id)
		return nil, domain.Validationf("no fields provided for update")
	}

	if _, err := uc.productRepo.GetProductByID(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Product ID %s not found for update: %v", id, err)
		return nil, err
	}

	validUpdates := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		switch key {
		case domain.FieldTitle:
			title, ok := value.(string)
			if !ok || title == "" {
				uc.log.Warnf("Use Case: Invalid or empty 'title' provided for update ID %s", id)
				return nil, domain.Validationf("product title cannot be empty if provided for update")
			}
			validUpdates[key] = title
		case domain.FieldDescription:
			description, ok := value.(string)
			if !ok && value != nil {
				return nil, domain.Validationf("product description must be a string")
			}
			validUpdates[key] = description
		case domain.FieldPrice:
			price, ok := value.(float64)
			if !ok {
				uc.log.Warnf("Use Case: Invalid 'price' type provided for update ID %s", id)
				return nil, domain.Validationf("product price must be a number if provided for update")
			}
			if err := domain.ValidatePrice(price); err != nil {
				uc.log.Warnf("Use Case: Invalid 'price' provided for update ID %s: %v", id, err)
				return nil, err
			}
			validUpdates[key] = price
		case domain.FieldCategory:
			raw, ok := value.(string)
			if !ok && value != nil {
				uc.log.Warnf("Use Case: Invalid type for 'category' provided for update ID %s", id)
				return nil, domain.Validationf("category must be a string ID or null")
			}
			if raw == "" {
				validUpdates[key] = ""
				continue
			}
			categoryID, err := uc.ensureCategory(ctx, raw)
			if err != nil {
				return nil, err
			}
			validUpdates[key] = categoryID
		case domain.FieldAttributes:
			attrs, ok := value.(map[string]interface{})
			if !ok && value != nil {
				return nil, domain.Validationf("attributes must be an object")
			}
			if attrs == nil {
				attrs = map[string]interface{}{}
			}
			validUpdates[key] = attrs
		default:
			uc.log.Warnf("Use Case: Attempted to update unknown or unsupported field '%s' for product ID %s", key, id)
			return nil, domain.Validationf("field %q cannot be updated", key)
		}
	}

	uc.log.Infof("Use Case: Attempting partial update for product ID %s with fields: %v", id, validUpdates)
	updatedProduct, err := uc.productRepo.UpdateProduct(ctx, id, validUpdates)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed partial update for product ID %s: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %s", updatedProduct.ID)
	return updatedProduct, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, principal *domain.Principal, id string) error {
	if err := uc.policy.CanManageCatalog(principal); err != nil {
		uc.log.Warnf("Use Case: Product deletion denied for ID %s: %v", id, err)
		return err
	}
	id, err := parseID("product", id)
	if err != nil {
		uc.log.Warnf("Use Case: Attempted delete with invalid product ID: %v", err)
		return err
	}
	uc.log.Infof("Use Case: Attempting to delete product ID %s", id)
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product ID %s: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product deleted successfully for ID %s", id)
	return nil
}

// ListProducts runs a parsed listing. A page requested explicitly past the
// end of the whole catalog is reported as not found; a page inside the
// catalog whose filter matches nothing is an empty page.
func (uc *productUseCase) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	if params.PageRequested {
		all, err := uc.productRepo.CountProducts(ctx, domain.ProductQuery{})
		if err != nil {
			uc.log.Errorf("Use Case: Repository failed to count catalog: %v", err)
			return nil, err
		}
		if int64(params.Query.Skip) >= all {
			uc.log.Warnf("Use Case: Page %d (limit %d) is past the %d catalog products", params.Page, params.Limit, all)
			return nil, domain.NotFoundf("This page does not exist")
		}
	}

	total, err := uc.productRepo.CountProducts(ctx, params.Query)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to count products: %v", err)
		return nil, err
	}

	products, err := uc.productRepo.ListProducts(ctx, params.Query)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, err
	}

	page := &ProductPage{
		Products: make([]map[string]interface{}, 0, len(products)),
		Page:     params.Page,
		Limit:    params.Limit,
		Total:    total,
	}
	for _, p := range products {
		page.Products = append(page.Products, p.Project(params.Fields))
	}
	uc.log.Infof("Use Case: Retrieved %d of %d products (page %d)", len(products), total, params.Page)
	return page, nil
}

func (uc *productUseCase) ensureCategory(ctx context.Context, raw string) (string, error) {
	categoryID, err := parseID("category", raw)
	if err != nil {
		return "", err
	}
	if _, err := uc.categoryRepo.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Category ID %s not found", categoryID)
			return "", domain.Validationf("category with id %s does not exist", categoryID)
		}
		return "", err
	}
	return categoryID, nil
}
