package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/order"
)

type placeOrderRequest struct {
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), claims.UserID, req.Address, req.PaymentMethod)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]any{
		"message": "order placed successfully",
		"order":   o,
	})
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	orders, err := h.orders.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	o, err := h.orders.GetForRequester(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.IsAdmin())
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"order": o})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	o, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"message": "order cancelled successfully",
		"order":   o,
	})
}

// mapOrderError converts domain errors from the order service to HTTP
// responses; anything unrecognized becomes a 500.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr      *order.InsufficientStockError
		notFoundErr   *order.ProductNotFoundError
		transitionErr *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, r, http.StatusBadRequest, "your cart is empty")
	case errors.Is(err, order.ErrAddressRequired):
		respondError(w, r, http.StatusBadRequest, "delivery address is required")
	case errors.Is(err, order.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrNotOwner):
		respondError(w, r, http.StatusForbidden, "unauthorized")
	case errors.As(err, &stockErr):
		respondError(w, r, http.StatusConflict, stockErr.Error())
	case errors.As(err, &notFoundErr):
		respondError(w, r, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &transitionErr):
		respondError(w, r, http.StatusConflict, transitionErr.Error())
	default:
		respondInternal(w, r, err)
	}
}
