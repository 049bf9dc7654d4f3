package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/service"
)

type CouponHandler struct {
	responder
	coupons CouponService
	now     func() time.Time
}

func NewCouponHandler(coupons CouponService, cfg HandlerConfig) *CouponHandler {
	return &CouponHandler{responder: responder{cfg: cfg}, coupons: coupons, now: time.Now}
}

// CouponRequest is used for both create and update; absent fields are
// left unchanged on update.
type CouponRequest struct {
	Code     *string    `json:"code"`
	Discount *float64   `json:"discount"`
	ExpireAt *time.Time `json:"expireAt"`
}

type couponResponse struct {
	*domain.Coupon
	Active bool `json:"active"`
}

func (h *CouponHandler) view(c *domain.Coupon) couponResponse {
	return couponResponse{Coupon: c, Active: c.Active(h.now())}
}

func (req CouponRequest) toInput() service.CouponInput {
	return service.CouponInput{Code: req.Code, Discount: req.Discount, ExpireAt: req.ExpireAt}
}

// Create handles POST /coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	var req CouponRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	coupon, err := h.coupons.Create(ctx, req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, h.view(coupon))
}

// List handles GET /coupons
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	coupons, err := h.coupons.List(ctx)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	views := make([]couponResponse, 0, len(coupons))
	for _, c := range coupons {
		views = append(views, h.view(c))
	}
	respondList(w, len(views), views)
}

// Get handles GET /coupons/{id}
func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	id, err := objectIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	coupon, err := h.coupons.Get(ctx, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.view(coupon))
}

// Update handles PUT /coupons/{id}
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	id, err := objectIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req CouponRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	coupon, err := h.coupons.Update(ctx, id, req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.view(coupon))
}

// Delete handles DELETE /coupons/{id}
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	id, err := objectIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.coupons.Delete(ctx, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
