package http

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/payment"
	"github.com/fjod/go_shop/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The handlers depend on these narrow views of the service layer.

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, in service.AddItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID string, itemID primitive.ObjectID) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID string, match domain.ItemMatch, quantity int) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) (*domain.Cart, error)
	ApplyCoupon(ctx context.Context, userID, code string) (*domain.Cart, error)
	RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error)
}

type CouponService interface {
	Create(ctx context.Context, in service.CouponInput) (*domain.Coupon, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Coupon, error)
	List(ctx context.Context) ([]*domain.Coupon, error)
	Update(ctx context.Context, id primitive.ObjectID, in service.CouponInput) (*domain.Coupon, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductService interface {
	Create(ctx context.Context, in service.ProductInput) (*domain.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	List(ctx context.Context, page, limit int) (*service.ProductPage, error)
	SetStock(ctx context.Context, id primitive.ObjectID, quantity int) (*domain.Product, error)
}

type OrderService interface {
	CreateCashOrder(ctx context.Context, userID string, cartID primitive.ObjectID, addr domain.ShippingAddress) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID primitive.ObjectID) (*domain.Order, error)
	MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (*domain.Order, error)
	Cancel(ctx context.Context, actor service.Actor, orderID primitive.ObjectID) (*domain.Order, error)
	Get(ctx context.Context, actor service.Actor, orderID primitive.ObjectID) (*domain.Order, error)
	List(ctx context.Context, actor service.Actor) ([]*domain.Order, error)
}

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, actor service.Actor, cartID primitive.ObjectID, addr domain.ShippingAddress) (*payment.Session, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*domain.Order, error)
}
