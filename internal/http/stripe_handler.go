package http

import (
	"context"
	"io"
	"net/http"

	"github.com/fjod/go_shop/internal/apperr"
)

// maxWebhookBody matches the limit Stripe documents for event payloads.
const maxWebhookBody = 65536

type StripeHandler struct {
	responder
	checkout CheckoutService
}

func NewStripeHandler(checkout CheckoutService, cfg HandlerConfig) *StripeHandler {
	return &StripeHandler{responder: responder{cfg: cfg}, checkout: checkout}
}

type checkoutSessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CheckoutSession handles GET /stripe/checkout-session/{cartId}
func (h *StripeHandler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
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
	addr, err := addressFromQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	session, err := h.checkout.CreateCheckoutSession(ctx, actor, cartID, addr)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutSessionResponse{Status: "success", SessionID: session.ID, URL: session.URL})
}

// Success handles GET /stripe/online/success
func (h *StripeHandler) Success(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, successResponse{Status: "success", Message: "payment received, your order is being created"})
}

// Cancel handles GET /stripe/online/cancel
func (h *StripeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, successResponse{Status: "success", Message: "payment was cancelled"})
}

// Webhook handles POST /stripe/webhook. The raw body is required for
// signature verification.
func (h *StripeHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil {
		h.respondError(w, r, apperr.New(apperr.KindValidation, "could not read request body", err))
		return
	}
	if len(payload) > maxWebhookBody {
		h.badRequest(w, r, "webhook payload too large")
		return
	}

	order, err := h.checkout.HandleWebhook(ctx, payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := map[string]interface{}{"received": true}
	if order != nil {
		resp["orderId"] = order.ID.Hex()
	}
	respondJSON(w, http.StatusOK, resp)
}
