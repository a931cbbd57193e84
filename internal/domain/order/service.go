package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
)

// DefaultPaymentMethod is used when checkout omits a payment method.
const DefaultPaymentMethod = "COD"

// Notifier delivers the order confirmation to the customer. Delivery is
// best-effort: the checkout succeeds even when the notifier fails.
type Notifier interface {
	SendInvoice(ctx context.Context, to string, o *Order, customerName string) error
}

// Service encapsulates the order placement and lifecycle logic.
type Service struct {
	products product.Repository
	carts    cart.Repository
	orders   Repository
	users    user.Repository
	notifier Notifier
}

// NewService creates an order Service with the required collaborators.
func NewService(
	products product.Repository,
	carts cart.Repository,
	orders Repository,
	users user.Repository,
	notifier Notifier,
) *Service {
	return &Service{
		products: products,
		carts:    carts,
		orders:   orders,
		users:    users,
		notifier: notifier,
	}
}

// PlaceOrder converts the user's cart into an order.
//
// The flow is: validate inputs and stock (no mutation yet), capture current
// prices into line items, reserve stock per product with an atomic
// conditional decrement, persist the order, clear the cart, and send the
// invoice email. Stock validation is all-or-nothing; if a concurrent
// checkout consumes stock between validation and reservation, the
// already-reserved lines are returned before the error surfaces. Notifier
// failures are logged and swallowed.
func (s *Service) PlaceOrder(ctx context.Context, userID, address, paymentMethod string) (*Order, error) {
	if address == "" {
		return nil, ErrAddressRequired
	}
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil || len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	products, err := s.fetchProducts(ctx, c.Items)
	if err != nil {
		return nil, err
	}

	// Stock validation and total computation happen before any mutation, so
	// a failure here has no side effects.
	items := make([]Item, len(c.Items))
	total := decimal.Zero
	for i, line := range c.Items {
		p := products[line.ProductID]
		if p.Stock < line.Quantity {
			return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name}
		}
		items[i] = Item{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Price:     p.Price,
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total = total.Round(2)

	if err := s.reserveStock(ctx, items); err != nil {
		return nil, err
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Items:         items,
		TotalAmount:   total,
		Address:       address,
		PaymentMethod: paymentMethod,
		Status:        StatusPending,
		PaymentStatus: PaymentNotPaid,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	s.sendInvoice(ctx, userID, o)

	return o, nil
}

// fetchProducts batch-reads every product referenced by the cart and fails
// when any line points at a deleted product.
func (s *Service) fetchProducts(ctx context.Context, lines []cart.Item) (map[string]product.Product, error) {
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
	}
	return byID, nil
}

// reserveStock decrements stock per line via the repository's conditional
// update. When a decrement loses a race against a concurrent checkout, the
// lines reserved so far are returned so the failed checkout leaves stock
// untouched.
func (s *Service) reserveStock(ctx context.Context, items []Item) error {
	for i, item := range items {
		err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity)
		if err == nil {
			continue
		}

		for _, done := range items[:i] {
			if rerr := s.products.AdjustStock(ctx, done.ProductID, done.Quantity); rerr != nil {
				zctx.From(ctx).Error("restock after failed reservation",
					zap.String("product_id", done.ProductID),
					zap.Int("quantity", done.Quantity),
					zap.Error(rerr),
				)
			}
		}

		if errors.Is(err, product.ErrInsufficientStock) {
			return &InsufficientStockError{ProductID: item.ProductID, Name: item.Name}
		}
		return errors.Wrapf(err, "reserve stock for %s", item.ProductID)
	}
	return nil
}

// sendInvoice renders and sends the confirmation email. Failures are logged
// at warn level and never fail the checkout.
func (s *Service) sendInvoice(ctx context.Context, userID string, o *Order) {
	lg := zctx.From(ctx)

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		lg.Warn("invoice email skipped: load user", zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	if err := s.notifier.SendInvoice(ctx, u.Email, o, u.Name); err != nil {
		lg.Warn("invoice email failed",
			zap.String("order_id", o.ID),
			zap.String("to", u.Email),
			zap.Error(err),
		)
		return
	}
	lg.Info("invoice email sent", zap.String("order_id", o.ID), zap.String("to", u.Email))
}

// Cancel sets the order to cancelled on behalf of its owner. Only pending or
// processing orders can be cancelled. Stock is not returned to the catalog.
func (s *Service) Cancel(ctx context.Context, orderID, requesterID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID {
		return nil, ErrNotOwner
	}
	if !o.Status.Cancellable() {
		return nil, &InvalidTransitionError{From: o.Status, To: StatusCancelled}
	}

	if err := s.orders.SetStatus(ctx, o.ID, StatusCancelled, o.PaymentStatus); err != nil {
		return nil, errors.Wrap(err, "set status")
	}
	o.Status = StatusCancelled
	return o, nil
}

// UpdateStatus applies an admin status and/or payment status change. Nil
// fields are left as they are. Transitions are validated against the order
// lifecycle; terminal orders reject all changes.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status *Status, payment *PaymentStatus) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next := o.Status
	if status != nil {
		if !o.Status.CanTransitionTo(*status) {
			return nil, &InvalidTransitionError{From: o.Status, To: *status}
		}
		next = *status
	}
	nextPayment := o.PaymentStatus
	if payment != nil {
		nextPayment = *payment
	}

	if err := s.orders.SetStatus(ctx, o.ID, next, nextPayment); err != nil {
		return nil, errors.Wrap(err, "set status")
	}
	o.Status = next
	o.PaymentStatus = nextPayment
	return o, nil
}

// GetForRequester returns a single order, restricted to its owner unless the
// requester is an admin.
func (s *Service) GetForRequester(ctx context.Context, orderID, requesterID string, isAdmin bool) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID && !isAdmin {
		return nil, ErrNotOwner
	}
	return o, nil
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order, newest first. Admin only; the handler enforces
// the role.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}
