package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_shop/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrdersHandler struct {
	responder
	orders OrderService
}

func NewOrdersHandler(orders OrderService, cfg HandlerConfig) *OrdersHandler {
	return &OrdersHandler{responder: responder{cfg: cfg}, orders: orders}
}

type CreateCashOrderRequest struct {
	ShippingAddress addressRequest `json:"shippingAddress"`
}

// CreateCashOrder handles POST /orders/cash/{cartId}
func (h *OrdersHandler) CreateCashOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	cartID, err := objectIDParam(r, "cartId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req CreateCashOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	addr, err := req.ShippingAddress.toDomain()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	order, err := h.orders.CreateCashOrder(ctx, actor.UserID, cartID, addr)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, order)
}

// List handles GET /orders. Admins see every order.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	orders, err := h.orders.List(ctx, actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondList(w, len(orders), orders)
}

// Get handles GET /orders/{id}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	id, err := objectIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	order, err := h.orders.Get(ctx, actor, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, order)
}

// MarkPaid handles PUT /orders/{id}/pay
func (h *OrdersHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkPaid)
}

// MarkDelivered handles PUT /orders/{id}/deliver
func (h *OrdersHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkDelivered)
}

// Cancel handles PUT /orders/{id}/cancel
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	h.transition(w, r, func(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
		return h.orders.Cancel(ctx, actor, id)
	})
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, primitive.ObjectID) (*domain.Order, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	id, err := objectIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	order, err := fn(ctx, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, order)
}
