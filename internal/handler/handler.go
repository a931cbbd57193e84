// Package handler exposes the REST API over a chi router, delegating
// business logic to the domain services and repositories.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// LowStockThreshold marks products as low-stock in the admin view.
	LowStockThreshold int
}

// Handler wires HTTP routes to the domain layer.
type Handler struct {
	cfg       Config
	users     user.Repository
	products  product.Repository
	carts     cart.Repository
	orders    *order.Service
	orderRepo order.Repository
	tokens    *auth.Tokens
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	users user.Repository,
	products product.Repository,
	carts cart.Repository,
	orders *order.Service,
	orderRepo order.Repository,
	tokens *auth.Tokens,
) *Handler {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 5
	}
	return &Handler{
		cfg:       cfg,
		users:     users,
		products:  products,
		carts:     carts,
		orders:    orders,
		orderRepo: orderRepo,
		tokens:    tokens,
	}
}

// Routes returns the API router. Public routes are the catalog and auth;
// everything else requires a bearer token, and the admin subtree requires
// the admin role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/profile", h.getProfile)
		r.Put("/profile", h.updateProfile)

		r.Get("/cart", h.getCart)
		r.Post("/cart/add", h.addToCart)
		r.Put("/cart/update", h.updateCartItem)
		r.Delete("/cart/item/{productID}", h.removeCartItem)
		r.Delete("/cart/clear", h.clearCart)

		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listMyOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}/cancel", h.cancelOrder)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser, h.requireAdmin)

		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Get("/admin/orders", h.listAllOrders)
		r.Put("/admin/orders/{id}", h.updateOrderStatus)
		r.Get("/admin/summary", h.adminSummary)
		r.Get("/admin/low-stock", h.lowStock)
		r.Get("/admin/users", h.listUsers)
	})

	return r
}
