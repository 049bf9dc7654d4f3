package http

import (
	"net/http"

	"github.com/fjod/go_shop/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxRequestBody = 1 << 20

type RouterDeps struct {
	Auth     *Authenticator
	Cart     *CartHandler
	Coupons  *CouponHandler
	Products *ProductHandler
	Orders   *OrdersHandler
	Stripe   *StripeHandler
	Config   HandlerConfig
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(d.Config.Log, d.Auth.UserID))
	r.Use(middleware.RequestSize(maxRequestBody))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", d.Products.List)
		r.Get("/{id}", d.Products.Get)
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Middleware, d.Auth.RequireAdmin)
			r.Post("/", d.Products.Create)
			r.Patch("/{id}/stock", d.Products.SetStock)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(d.Auth.Middleware)
		r.Post("/", d.Cart.AddItem)
		r.Get("/", d.Cart.GetCart)
		r.Delete("/clear", d.Cart.ClearCart)
		r.Post("/apply-coupon", d.Cart.ApplyCoupon)
		r.Delete("/coupon", d.Cart.RemoveCoupon)
		r.Patch("/{itemId}", d.Cart.UpdateQuantity)
		r.Delete("/{itemId}", d.Cart.RemoveItem)
	})

	r.Route("/coupons", func(r chi.Router) {
		r.Use(d.Auth.Middleware, d.Auth.RequireAdmin)
		r.Post("/", d.Coupons.Create)
		r.Get("/", d.Coupons.List)
		r.Get("/{id}", d.Coupons.Get)
		r.Put("/{id}", d.Coupons.Update)
		r.Delete("/{id}", d.Coupons.Delete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(d.Auth.Middleware)
		r.Post("/cash/{cartId}", d.Orders.CreateCashOrder)
		r.Get("/", d.Orders.List)
		r.Get("/{id}", d.Orders.Get)
		r.Put("/{id}/cancel", d.Orders.Cancel)
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.RequireAdmin)
			r.Put("/{id}/pay", d.Orders.MarkPaid)
			r.Put("/{id}/deliver", d.Orders.MarkDelivered)
		})
	})

	r.Route("/stripe", func(r chi.Router) {
		r.Post("/webhook", d.Stripe.Webhook)
		r.Get("/online/success", d.Stripe.Success)
		r.Get("/online/cancel", d.Stripe.Cancel)
		r.With(d.Auth.Middleware).Get("/checkout-session/{cartId}", d.Stripe.CheckoutSession)
	})

	return r
}
