package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order. The lifecycle moves strictly
// forward: pending → processing → shipped → delivered, with cancellation
// possible from pending or processing only. Delivered and cancelled are
// terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a status string against the known set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether the order may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition. The lifecycle normally advances one step at a time, but a
// non-terminal order may skip forward (pending straight to shipped or
// delivered) so back-office corrections do not have to replay intermediate
// states. Backward moves and any move out of a terminal state are rejected.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusShipped ||
			next == StatusDelivered || next == StatusCancelled
	case StatusProcessing:
		return next == StatusShipped || next == StatusDelivered || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered
	default:
		return false
	}
}

// PaymentStatus tracks whether an order has been paid for.
type PaymentStatus string

const (
	PaymentNotPaid PaymentStatus = "not paid"
	PaymentPaid    PaymentStatus = "paid"
)

// ParsePaymentStatus validates a payment status string against the known set.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentNotPaid, PaymentPaid:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// Item is a line item with the unit price captured at purchase time. The
// order owns this copy of the price data: later catalog price changes never
// touch it, and totals are never recomputed after creation.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is an immutable record of a completed checkout. Only Status and
// PaymentStatus are mutable after creation.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Items         []Item          `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ShortID returns the last six characters of the order ID, used in invoice
// subject lines.
func (o *Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	SetStatus(ctx context.Context, id string, status Status, payment PaymentStatus) error
	Count(ctx context.Context) (int, error)
	PaidRevenue(ctx context.Context) (decimal.Decimal, error)
}
