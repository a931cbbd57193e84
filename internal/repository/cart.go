package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. A cart is
// the set of cart_items rows for a user, ordered by insertion time; an empty
// cart is simply the absence of rows.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's cart. Users without items get an empty cart, not an
// error.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY added_at, product_id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Item, error) {
		var it cart.Item
		err := row.Scan(&it.ProductID, &it.Quantity)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}

	return &cart.Cart{UserID: userID, Items: items}, nil
}

// AddItem adds a product to the cart, merging quantities when the product is
// already present.
func (r *CartRepository) AddItem(ctx context.Context, userID, productID string, quantity int) (*cart.Cart, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("adding %q to cart: %w", productID, err)
	}
	return r.Get(ctx, userID)
}

// UpdateItem sets the quantity of an existing line.
func (r *CartRepository) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*cart.Cart, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2",
		userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("updating cart item %q: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, cart.ErrItemNotFound
	}
	return r.Get(ctx, userID)
}

// RemoveItem deletes a line from the cart. Removing an absent product is not
// an error.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2",
		userID, productID)
	if err != nil {
		return nil, fmt.Errorf("removing cart item %q: %w", productID, err)
	}
	return r.Get(ctx, userID)
}

// Clear removes all lines from the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("clearing cart for %q: %w", userID, err)
	}
	return nil
}
