package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
)

// cartLineResponse is a cart line enriched with live product details.
type cartLineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
}

type cartResponse struct {
	Message    string             `json:"message,omitempty"`
	Items      []cartLineResponse `json:"items"`
	TotalItems int                `json:"total_items"`
}

// buildCartResponse joins the cart lines with current catalog data. Lines
// whose product has been deleted are shown with the bare product ID.
func (h *Handler) buildCartResponse(r *http.Request, c *cart.Cart, message string) (*cartResponse, error) {
	resp := &cartResponse{
		Message:    message,
		Items:      make([]cartLineResponse, 0, len(c.Items)),
		TotalItems: c.TotalItems(),
	}
	if len(c.Items) == 0 {
		return resp, nil
	}

	ids := make([]string, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	products, err := h.products.GetByIDs(r.Context(), ids)
	if err != nil {
		return nil, errors.Wrap(err, "get cart products")
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range c.Items {
		line := cartLineResponse{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := byID[it.ProductID]; ok {
			line.Name = p.Name
			line.Price = p.Price
			line.Stock = p.Stock
		}
		resp.Items = append(resp.Items, line)
	}
	return resp, nil
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, c *cart.Cart, message string) {
	resp, err := h.buildCartResponse(r, c, message)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	c, err := h.carts.Get(r.Context(), claims.UserID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	h.respondCart(w, r, c, "")
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req addToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		respondError(w, r, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	// The product must exist before it can be added.
	if _, err := h.products.GetByID(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}

	c, err := h.carts.AddItem(r.Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	h.respondCart(w, r, c, "product added to cart")
}

type updateCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req updateCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity < 1 {
		respondError(w, r, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	c, err := h.carts.UpdateItem(r.Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(w, r, http.StatusNotFound, "product not in cart")
			return
		}
		respondInternal(w, r, err)
		return
	}
	h.respondCart(w, r, c, "cart updated")
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	c, err := h.carts.RemoveItem(r.Context(), claims.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	h.respondCart(w, r, c, "item removed from cart")
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	if err := h.carts.Clear(r.Context(), claims.UserID); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cartResponse{
		Message: "cart cleared",
		Items:   []cartLineResponse{},
	})
}
