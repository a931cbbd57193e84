package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a user has no cart yet.
var ErrNotFound = errors.New("cart not found")

// ErrItemNotFound is returned when a referenced product is not in the cart.
var ErrItemNotFound = errors.New("product not in cart")

// Item is a single product selection in a cart.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart holds a user's pending item selections. A user owns at most one cart;
// adding an already-present product merges quantities so no duplicate product
// rows exist. The cart is cleared (not deleted) on successful checkout.
type Cart struct {
	UserID string `json:"user_id"`
	Items  []Item `json:"items"`
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// Repository defines persistence operations for carts.
//
// Get returns an empty cart (not ErrNotFound) for users that never added an
// item; ErrNotFound is reserved for operations that require an existing line.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error)
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
}
