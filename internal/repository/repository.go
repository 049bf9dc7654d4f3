package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartConflict     = errors.New("cart was modified concurrently")
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrDuplicateCoupon  = errors.New("coupon code already exists")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderConflict    = errors.New("order was modified concurrently")
	ErrDuplicatePayment = errors.New("order for this payment session already exists")
	ErrProductNotFound  = errors.New("product not found")
)

// CartRepository stores one cart per user. Save is a compare-and-swap on
// Cart.Version.
type CartRepository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Coupon, error)
	// GetByCode matches the code case-insensitively.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]*domain.Coupon, error)
	Update(ctx context.Context, coupon *domain.Coupon) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderFilter narrows List. A zero UserID lists every order.
type OrderFilter struct {
	UserID string
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	List(ctx context.Context, page, limit int) ([]*domain.Product, int64, error)
	SetQuantity(ctx context.Context, id primitive.ObjectID, quantity int) (*domain.Product, error)
	// AdjustStock applies independent per-product increments. A partial
	// failure leaves the successful updates in place.
	AdjustStock(ctx context.Context, deltas []domain.StockDelta) error
}

// OutboxEvent is an order event waiting to be relayed to the broker.
// Payload holds the encoded message body.
type OutboxEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	EventID     string             `bson:"event_id"`
	Type        string             `bson:"type"`
	Key         string             `bson:"key"`
	Payload     []byte             `bson:"payload"`
	Attempts    int                `bson:"attempts"`
	LastError   string             `bson:"last_error,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	PublishedAt *time.Time         `bson:"published_at"`
}

type OutboxRepository interface {
	Add(ctx context.Context, event *OutboxEvent) error
	// Pending returns unpublished events oldest first.
	Pending(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkPublished(ctx context.Context, id primitive.ObjectID, at time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error
}

// Transactor runs fn so that every repository call made with the context it
// receives commits or aborts together.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
