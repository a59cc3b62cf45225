package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, title, description, price, category_id, attributes, created_at, updated_at, version`

// productColumn maps product field names to their columns.
var productColumn = map[string]string{
	domain.FieldTitle:       "title",
	domain.FieldDescription: "description",
	domain.FieldPrice:       "price",
	domain.FieldCategory:    "category_id",
	domain.FieldAttributes:  "attributes",
	domain.FieldCreatedAt:   "created_at",
	domain.FieldUpdatedAt:   "updated_at",
}

var filterOperator = map[domain.FilterOp]string{
	domain.OpEq:  "=",
	domain.OpGte: ">=",
	domain.OpGt:  ">",
	domain.OpLte: "<=",
	domain.OpLt:  "<",
}

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product    domain.Product
		categoryID sql.NullString
		attributes []byte
	)
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&categoryID,
		&attributes,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, err
	}
	product.CategoryID = categoryID.String
	product.Attributes = map[string]interface{}{}
	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &product.Attributes); err != nil {
			return nil, fmt.Errorf("error decoding product attributes: %w", err)
		}
	}
	return &product, nil
}

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	attributes, err := json.Marshal(product.Attributes)
	if err != nil {
		return nil, domain.Validationf("product attributes are not valid JSON: %v", err)
	}

	query := `
        INSERT INTO products (id, title, description, price, category_id, attributes)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + productColumns
	row := r.db.QueryRowContext(ctx, query,
		product.ID, product.Title, product.Description, product.Price, nullableID(product.CategoryID), attributes)
	created, err := scanProduct(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Attempted to create product with non-existent category ID: %s", product.CategoryID)
			return nil, domain.Validationf("category with id %s does not exist", product.CategoryID)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation for product '%s': %s", product.Title, pqErr.Message)
			return nil, domain.Validationf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Title, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %s, Title: %s", created.ID, created.Title)
	return created, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %s not found", id)
			return nil, domain.NotFoundf("product with id %s not found", id)
		}
		r.log.Errorf("Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	return product, nil
}

func (r *postgresProductRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[])`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.log.Errorf("Failed to get %d products by ID: %v", len(ids), err)
		return nil, fmt.Errorf("could not get products by id: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// UpdateProduct applies a validated partial update. Keys are applied in
// sorted order so the generated statement is stable.
func (r *postgresProductRepository) UpdateProduct(ctx context.Context, id string, updates map[string]interface{}) (*domain.Product, error) {
	if len(updates) == 0 {
		r.log.Infof("Repository: No fields provided for product update ID %s. Returning current product.", id)
		return r.GetProductByID(ctx, id)
	}

	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := []interface{}{}
	setClauses := []string{}
	argCounter := 1

	for _, key := range keys {
		column, ok := productColumn[key]
		if !ok || key == domain.FieldCreatedAt || key == domain.FieldUpdatedAt {
			r.log.Warnf("Repository: Skipping unknown field '%s' provided for product update ID %s", key, id)
			continue
		}
		argValue := updates[key]
		switch key {
		case domain.FieldCategory:
			catID, _ := argValue.(string)
			argValue = nullableID(catID)
		case domain.FieldAttributes:
			encoded, err := json.Marshal(argValue)
			if err != nil {
				return nil, domain.Validationf("product attributes are not valid JSON: %v", err)
			}
			argValue = encoded
		}

		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCounter))
		args = append(args, argValue)
		argCounter++
	}

	if len(setClauses) == 0 {
		r.log.Warnf("Repository: No valid known fields provided for product update ID %s. Returning current product.", id)
		return r.GetProductByID(ctx, id)
	}
	setClauses = append(setClauses, "updated_at = now()", "version = version + 1")

	query := "UPDATE products SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	r.log.Debugf("Repository: Executing partial update query for ID %s: %s", id, query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Repository: Attempted to update product ID %s with non-existent category ID: %v", id, updates[domain.FieldCategory])
			return nil, domain.Validationf("category with id %v does not exist", updates[domain.FieldCategory])
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Repository: Check constraint violation for product update ID %s: %s", id, pqErr.Message)
			return nil, domain.Validationf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Repository: Failed to execute partial update for product ID %s: %v", id, err)
		return nil, fmt.Errorf("could not partially update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after partial update for ID %s: %v", id, err)
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %s not found for update (0 rows affected)", id)
		return nil, domain.NotFoundf("product with id %s not found for update", id)
	}

	r.log.Infof("Repository: Partial update successful for product ID %s. Fetching updated product.", id)
	return r.GetProductByID(ctx, id)
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete product ID %s: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %s: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %s", id)
		return domain.NotFoundf("product with id %s not found for deletion", id)
	}
	r.log.Infof("Product deleted successfully with ID: %s", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	where, args := buildProductWhere(q)
	query := `SELECT ` + productColumns + ` FROM products` + where + buildProductOrder(q)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	offset := q.Skip
	if offset < 0 {
		offset = 0
	}
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list products (limit %d, offset %d): %v", q.Limit, q.Skip, err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	r.log.Infof("Retrieved %d products (limit: %d, offset: %d)", len(products), q.Limit, q.Skip)
	return products, nil
}

func (r *postgresProductRepository) CountProducts(ctx context.Context, q domain.ProductQuery) (int64, error) {
	where, args := buildProductWhere(q)
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&count); err != nil {
		r.log.Errorf("Failed to count products: %v", err)
		return 0, fmt.Errorf("could not count products: %w", err)
	}
	return count, nil
}

func (r *postgresProductRepository) collect(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error during products list iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// buildProductWhere renders the typed filters as a parameterised WHERE
// clause. Only columns from productColumn are ever interpolated.
func buildProductWhere(q domain.ProductQuery) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	for _, f := range q.Filters {
		column, ok := productColumn[f.Field]
		op, okOp := filterOperator[f.Op]
		if !ok || !okOp {
			continue
		}
		args = append(args, f.Value)
		conds = append(conds, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func buildProductOrder(q domain.ProductQuery) string {
	parts := make([]string, 0, len(q.Sort)+1)
	for _, k := range q.Sort {
		column, ok := productColumn[k.Field]
		if !ok {
			continue
		}
		if k.Desc {
			parts = append(parts, column+" DESC")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	parts = append(parts, "id ASC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
