package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, principal *domain.Principal, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, principal *domain.Principal, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, principal *domain.Principal, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	policy       Policy
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, policy Policy, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		policy:       policy,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, principal *domain.Principal, category *domain.Category) (*domain.Category, error) {
	if err := uc.policy.CanManageCatalog(principal); err != nil {
		uc.log.Warnf("Use Case: Category creation denied: %v", err)
		return nil, err
	}
	category.Title = strings.TrimSpace(category.Title)
	if category.Title == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty title")
		return nil, domain.Validationf("category title cannot be empty")
	}
	category.ID = uuid.NewString()

	uc.log.Infof("Use Case: Attempting to create category with title '%s'", category.Title)
	createdCategory, err := uc.categoryRepo.CreateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Title, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category '%s' created successfully with ID %s", createdCategory.Title, createdCategory.ID)
	return createdCategory, nil
}

func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	id, err := parseID("category", id)
	if err != nil {
		uc.log.Warnf("Use Case: Attempted to get category with invalid ID: %v", err)
		return nil, err
	}

	category, err := uc.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category ID %s: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category retrieved successfully for ID %s", id)
	return category, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, principal *domain.Principal, category *domain.Category) (*domain.Category, error) {
	if err := uc.policy.CanManageCatalog(principal); err != nil {
		uc.log.Warnf("Use Case: Category update denied for ID %s: %v", category.ID, err)
		return nil, err
	}
	id, err := parseID("category", category.ID)
	if err != nil {
		uc.log.Warnf("Use Case: Attempted update with invalid ID: %v", err)
		return nil, err
	}
	category.ID = id
	category.Title = strings.TrimSpace(category.Title)
	if category.Title == "" {
		uc.log.Warnf("Use Case: Attempted update for ID %s with empty title", category.ID)
		return nil, domain.Validationf("category title cannot be empty for update")
	}

	uc.log.Infof("Use Case: Attempting to update category ID %s", category.ID)
	updatedCategory, err := uc.categoryRepo.UpdateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update category ID %s: %v", category.ID, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category updated successfully for ID %s", updatedCategory.ID)
	return updatedCategory, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, principal *domain.Principal, id string) error {
	if err := uc.policy.CanManageCatalog(principal); err != nil {
		uc.log.Warnf("Use Case: Category deletion denied for ID %s: %v", id, err)
		return err
	}
	id, err := parseID("category", id)
	if err != nil {
		uc.log.Warnf("Use Case: Attempted delete with invalid ID: %v", err)
		return err
	}

	uc.log.Infof("Use Case: Attempting to delete category ID %s", id)
	if err := uc.categoryRepo.DeleteCategory(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category ID %s: %v", id, err)
		return err
	}

	uc.log.Infof("Use Case: Category deleted successfully for ID %s", id)
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	uc.log.Info("Use Case: Attempting to list all categories")

	categories, err := uc.categoryRepo.ListCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, err
	}

	uc.log.Infof("Use Case: Retrieved %d categories", len(categories))
	return categories, nil
}
