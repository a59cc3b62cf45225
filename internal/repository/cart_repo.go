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

type postgresCartRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sql.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCartRepository) GetCartByOwner(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart := &domain.Cart{}
	cartQuery := `
        SELECT id, owner_id, total, version, created_at, updated_at
        FROM carts
        WHERE owner_id = $1`
	err := r.db.QueryRowContext(ctx, cartQuery, ownerID).Scan(
		&cart.ID,
		&cart.OwnerID,
		&cart.Total,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("cart not found")
		}
		r.log.Errorf("Failed to get cart for user %s: %v", ownerID, err)
		return nil, fmt.Errorf("could not get cart: %w", err)
	}

	itemsQuery := `
        SELECT product_id, quantity, size, color
        FROM cart_items
        WHERE cart_id = $1
        ORDER BY position ASC`
	rows, err := r.db.QueryContext(ctx, itemsQuery, cart.ID)
	if err != nil {
		r.log.Errorf("Failed to get items for cart %s: %v", cart.ID, err)
		return nil, fmt.Errorf("could not get cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Size, &item.Color); err != nil {
			r.log.Errorf("Failed to scan item row for cart %s: %v", cart.ID, err)
			return nil, fmt.Errorf("error scanning cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error iterating items for cart %s: %v", cart.ID, err)
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return cart, nil
}

// SaveCart writes the cart header and replaces its lines in one transaction.
// The header write is conditional on the version read by the caller.
func (r *postgresCartRepository) SaveCart(ctx context.Context, cart *domain.Cart) (saved *domain.Cart, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		r.log.Warnf("Rolling back cart %s transaction due to error: %v", cart.ID, err)
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Errorf("Failed to rollback transaction: %v", rbErr)
		}
	}()

	out := *cart
	if cart.Version == 0 {
		insert := `
            INSERT INTO carts (id, owner_id, total, version)
            VALUES ($1, $2, $3, 1)
            RETURNING version, created_at, updated_at`
		err = tx.QueryRowContext(ctx, insert, cart.ID, cart.OwnerID, cart.Total).
			Scan(&out.Version, &out.CreatedAt, &out.UpdatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				r.log.Warnf("Cart for user %s was created concurrently", cart.OwnerID)
				return nil, domain.Conflictf("cart for user %s already exists", cart.OwnerID)
			}
			r.log.Errorf("Failed to insert cart for user %s: %v", cart.OwnerID, err)
			return nil, fmt.Errorf("could not create cart: %w", err)
		}
	} else {
		update := `
            UPDATE carts
            SET total = $1, version = version + 1, updated_at = now()
            WHERE id = $2 AND version = $3
            RETURNING version, created_at, updated_at`
		err = tx.QueryRowContext(ctx, update, cart.Total, cart.ID, cart.Version).
			Scan(&out.Version, &out.CreatedAt, &out.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				r.log.Warnf("Cart %s changed since version %d was read", cart.ID, cart.Version)
				return nil, domain.Conflictf("cart %s was modified concurrently", cart.ID)
			}
			r.log.Errorf("Failed to update cart %s: %v", cart.ID, err)
			return nil, fmt.Errorf("could not update cart: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
			r.log.Errorf("Failed to clear items of cart %s: %v", cart.ID, err)
			return nil, fmt.Errorf("could not replace cart items: %w", err)
		}
	}

	if len(cart.Items) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, `
            INSERT INTO cart_items (cart_id, position, product_id, quantity, size, color)
            VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			r.log.Errorf("Failed to prepare cart item statement: %v", err)
			return nil, fmt.Errorf("could not prepare item statement: %w", err)
		}
		defer stmt.Close()

		for i, item := range cart.Items {
			if _, err = stmt.ExecContext(ctx, cart.ID, i, item.ProductID, item.Quantity, item.Size, item.Color); err != nil {
				r.log.Errorf("Failed to insert item (product_id: %s) for cart %s: %v", item.ProductID, cart.ID, err)
				return nil, fmt.Errorf("could not save cart item (product_id: %s): %w", item.ProductID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		r.log.Errorf("Failed to commit cart %s: %v", cart.ID, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	out.Items = append([]domain.CartItem{}, cart.Items...)
	r.log.Infof("Cart %s saved at version %d with %d items", out.ID, out.Version, len(out.Items))
	return &out, nil
}
