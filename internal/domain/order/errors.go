package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for checkout and lifecycle validation.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrAddressRequired = errors.New("delivery address is required")
	ErrNotFound        = errors.New("order not found")
	ErrNotOwner        = errors.New("order belongs to another user")
)

// ProductNotFoundError indicates a cart line references a product that no
// longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError indicates a line item's quantity exceeds the
// product's available stock. The whole checkout fails; no partial order is
// created.
type InsufficientStockError struct {
	ProductID string
	Name      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Name)
}

// InvalidTransitionError indicates an illegal order status transition,
// naming the current state.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %q to %q", e.From, e.To)
}
