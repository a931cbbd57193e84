package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := product.ListParams{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	}
	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.Limit, _ = strconv.Atoi(q.Get("limit"))
	params.Normalize()

	products, total, err := h.products.List(r.Context(), params)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	pages := (total + params.Limit - 1) / params.Limit
	respondJSON(w, r, http.StatusOK, map[string]any{
		"total":    total,
		"page":     params.Page,
		"pages":    pages,
		"products": products,
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"product": p})
}

type createProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, r, http.StatusBadRequest, "product name is required")
		return
	}
	if req.Price.IsNegative() || req.Stock < 0 {
		respondError(w, r, http.StatusBadRequest, "price and stock must be non-negative")
		return
	}

	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]any{"message": "product added", "product": p})
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		respondError(w, r, http.StatusBadRequest, "price must be non-negative")
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		respondError(w, r, http.StatusBadRequest, "stock must be non-negative")
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), product.Update{
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"message": "product updated", "product": p})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"message": "product deleted"})
}
