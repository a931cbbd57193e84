package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/order"
)

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"orders": orders})
}

type updateOrderStatusRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == nil && req.PaymentStatus == nil {
		respondError(w, r, http.StatusBadRequest, "status or payment_status is required")
		return
	}

	var status *order.Status
	if req.Status != nil {
		s, err := order.ParseStatus(*req.Status)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		status = &s
	}
	var payment *order.PaymentStatus
	if req.PaymentStatus != nil {
		p, err := order.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		payment = &p
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status, payment)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"message": "order updated", "order": o})
}

func (h *Handler) adminSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := h.users.Count(ctx)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	totalProducts, err := h.products.Count(ctx)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	totalOrders, err := h.orderRepo.Count(ctx)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	revenue, err := h.orderRepo.PaidRevenue(ctx)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"total_users":    totalUsers,
		"total_orders":   totalOrders,
		"total_products": totalProducts,
		"total_revenue":  revenue,
	})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListLowStock(r.Context(), h.cfg.LowStockThreshold)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"low_stock": products})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"users": users})
}
