package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/service"
)

type CartHandler struct {
	responder
	carts CartService
}

func NewCartHandler(carts CartService, cfg HandlerConfig) *CartHandler {
	return &CartHandler{responder: responder{cfg: cfg}, carts: carts}
}

type AddItemRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  *int   `json:"quantity"`
}

type UpdateQuantityRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type ApplyCouponRequest struct {
	CouponCode string `json:"couponCode"`
}

type cartResponse struct {
	Status         string       `json:"status"`
	NumOfCartItems int          `json:"numOfCartItems"`
	Data           *domain.Cart `json:"data"`
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, cart *domain.Cart) {
	respondJSON(w, status, cartResponse{Status: "success", NumOfCartItems: len(cart.Items), Data: cart})
}

// AddItem handles POST /cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	productID, err := parseObjectID("productId", req.ProductID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		h.badRequest(w, r, "quantity must be at least 1")
		return
	}

	cart, err := h.carts.AddItem(ctx, actor.UserID, service.AddItemInput{
		ProductID: productID,
		Color:     strings.TrimSpace(req.Color),
		Size:      strings.TrimSpace(req.Size),
		Quantity:  quantity,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, http.StatusOK, cart)
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, actor.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, http.StatusOK, cart)
}

// UpdateQuantity handles PATCH /cart/{itemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	itemID, err := objectIDParam(r, "itemId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	productID, err := parseObjectID("productId", req.ProductID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Quantity < 1 {
		h.badRequest(w, r, "quantity must be at least 1")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, actor.UserID, domain.ItemMatch{
		ItemID:    itemID,
		ProductID: productID,
		Color:     req.Color,
		Size:      req.Size,
	}, req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	itemID, err := objectIDParam(r, "itemId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cart, err := h.carts.RemoveItem(ctx, actor.UserID, itemID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, http.StatusOK, cart)
}

// ClearCart handles DELETE /cart/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	if _, err := h.carts.ClearCart(ctx, actor.UserID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyCoupon handles POST /cart/apply-coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	var req ApplyCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.CouponCode) == "" {
		h.badRequest(w, r, "couponCode is required")
		return
	}

	cart, err := h.carts.ApplyCoupon(ctx, actor.UserID, req.CouponCode)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, http.StatusOK, cart)
}

// RemoveCoupon handles DELETE /cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	cart, err := h.carts.RemoveCoupon(ctx, actor.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, http.StatusOK, cart)
}
