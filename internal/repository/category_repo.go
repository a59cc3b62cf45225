package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `INSERT INTO categories (id, title) VALUES ($1, $2) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, category.ID, category.Title).Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Attempted to create category with duplicate title: %s", category.Title)
			return nil, domain.Conflictf("category with title '%s' already exists", category.Title)
		}
		r.log.Errorf("Failed to create category '%s': %v", category.Title, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	r.log.Infof("Category created successfully with ID: %s, Title: %s", category.ID, category.Title)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, title, created_at, updated_at FROM categories WHERE id = $1`
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Title, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %s not found", id)
			return nil, domain.NotFoundf("category with id %s not found", id)
		}
		r.log.Errorf("Failed to get category by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `UPDATE categories SET title = $1, updated_at = now() WHERE id = $2 RETURNING id, title, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, category.Title, category.ID).
		Scan(&category.ID, &category.Title, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Attempted to update category ID %s with duplicate title: %s", category.ID, category.Title)
			return nil, domain.Conflictf("category with title '%s' already exists", category.Title)
		}
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %s not found for update", category.ID)
			return nil, domain.NotFoundf("category with id %s not found for update", category.ID)
		}
		r.log.Errorf("Failed to update category ID %s: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	r.log.Infof("Category updated successfully with ID: %s", category.ID)
	return category, nil
}

// DeleteCategory relies on ON DELETE SET NULL to detach products.
func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete category ID %s: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting category ID %s: %v", id, err)
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}

	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent category ID %s", id)
		return domain.NotFoundf("category with id %s not found for deletion", id)
	}

	r.log.Infof("Category deleted successfully with ID: %s", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, title, created_at, updated_at FROM categories ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Title, &category.CreatedAt, &category.UpdatedAt); err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, fmt.Errorf("error scanning category data: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during categories list iteration: %v", err)
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	r.log.Infof("Retrieved %d categories", len(categories))
	return categories, nil
}
