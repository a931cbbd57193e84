package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrInsufficientStock is returned by AdjustStock when a decrement would
// drive the stock count below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListParams controls filtering, sorting, and pagination of catalog listings.
type ListParams struct {
	Category string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

// Normalize clamps pagination values to sane defaults.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
}

// Offset returns the row offset implied by Page and Limit.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Update describes a partial product update. Nil fields are left unchanged.
type Update struct {
	Name        *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Description *string
	Image       *string
}

// Repository defines persistence operations for the product catalog.
//
// AdjustStock applies a signed delta to a product's stock count as a single
// conditional update: a negative delta only succeeds when the resulting stock
// stays non-negative, otherwise ErrInsufficientStock is returned and nothing
// changes. This is the serialization point that keeps concurrent checkouts
// from overselling.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]Product, int, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, upd Update) (*Product, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int) error
	ListLowStock(ctx context.Context, threshold int) ([]Product, error)
	Count(ctx context.Context) (int, error)
}
