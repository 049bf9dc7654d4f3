package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_shop/internal/service"
)

type ProductHandler struct {
	responder
	products ProductService
}

func NewProductHandler(products ProductService, cfg HandlerConfig) *ProductHandler {
	return &ProductHandler{responder: responder{cfg: cfg}, products: products}
}

type CreateProductRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	PriceAfterDiscount *float64 `json:"priceAfterDiscount"`
	Quantity           int      `json:"quantity"`
	Images             []string `json:"images"`
	Colors             []string `json:"colors"`
	Sizes              []string `json:"sizes"`
}

type SetStockRequest struct {
	Quantity *int `json:"quantity"`
}

// List handles GET /products?page=&limit=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.products.List(ctx, page, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		*service.ProductPage
	}{Status: "success", ProductPage: result})
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	id, err := objectIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	product, err := h.products.Get(ctx, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, product)
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	var req CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	product, err := h.products.Create(ctx, service.ProductInput{
		Title:              req.Title,
		Description:        req.Description,
		Price:              req.Price,
		PriceAfterDiscount: req.PriceAfterDiscount,
		Quantity:           req.Quantity,
		Images:             req.Images,
		Colors:             req.Colors,
		Sizes:              req.Sizes,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, product)
}

// SetStock handles PATCH /products/{id}/stock
func (h *ProductHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	id, err := objectIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req SetStockRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Quantity == nil {
		h.badRequest(w, r, "quantity is required")
		return
	}

	product, err := h.products.SetStock(ctx, id, *req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, product)
}
