package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/payment"
	"github.com/fjod/go_shop/internal/pricing"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderDeps struct {
	Carts    repository.CartRepository
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Tx       repository.Transactor
	Cache    cache.CartCache
	Events   events.Publisher
	Charges  domain.Charges
	Log      zerolog.Logger
}

type OrderService struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	tx       repository.Transactor
	cache    cache.CartCache
	events   events.Publisher
	charges  domain.Charges
	log      zerolog.Logger
	now      func() time.Time
}

func NewOrderService(d OrderDeps) *OrderService {
	return &OrderService{
		carts:    d.Carts,
		orders:   d.Orders,
		products: d.Products,
		tx:       d.Tx,
		cache:    d.Cache,
		events:   d.Events,
		charges:  d.Charges,
		log:      d.Log,
		now:      time.Now,
	}
}

// CreateCashOrder turns the caller's cart into an unpaid cash order.
func (s *OrderService) CreateCashOrder(ctx context.Context, userID string, cartID primitive.ObjectID, addr domain.ShippingAddress) (*domain.Order, error) {
	cart, err := s.loadCheckoutCart(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(cart, addr, domain.PaymentCash, s.charges, s.now().UTC())
	if err := s.place(ctx, cart, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateCardOrder materializes the order for a completed gateway session. A
// session that already produced an order returns that order, settling it once
// the session reports captured funds.
func (s *OrderService) CreateCardOrder(ctx context.Context, cs *payment.CompletedSession) (*domain.Order, error) {
	existing, err := s.orders.GetBySessionID(ctx, cs.SessionID)
	if err == nil {
		if existing.IsPaid || !s.chargeCovers(existing, cs) {
			return existing, nil
		}
		return s.transition(ctx, existing.ID, events.OrderPaid, func(o *domain.Order, now time.Time) error {
			if o.PaymentResult != nil {
				o.PaymentResult.Status = cs.PaymentStatus
				o.PaymentResult.UpdateTime = now
			}
			return o.MarkPaid(now)
		})
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, translate(err)
	}

	cartID, err := primitive.ObjectIDFromHex(cs.ClientReferenceID)
	if err != nil {
		return nil, apperr.Validation("payment session does not reference a cart")
	}

	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, translate(err)
	}
	if uid := cs.UserID(); uid != "" && uid != cart.UserID {
		return nil, apperr.Validation("payment session user does not own the cart")
	}
	if cart.IsEmpty() {
		return nil, translate(ErrCartAlreadyOrdered)
	}

	now := s.now().UTC()
	order := domain.NewOrder(cart, cs.ShippingAddress(), domain.PaymentCard, s.charges, now)
	order.PaymentResult = &domain.PaymentResult{
		SessionID:       cs.SessionID,
		PaymentIntentID: cs.PaymentIntentID,
		Status:          cs.PaymentStatus,
		EmailAddress:    cs.CustomerEmail,
		AmountPaid:      pricing.FromMinorUnits(cs.AmountTotal),
		UpdateTime:      now,
	}
	if s.chargeCovers(order, cs) {
		if err := order.MarkPaid(now); err != nil {
			return nil, translate(err)
		}
	}

	if err := s.place(ctx, cart, order); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			// a concurrent delivery of the same webhook won
			if existing, getErr := s.orders.GetBySessionID(ctx, cs.SessionID); getErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return order, nil
}

// chargeCovers reports whether the session captured exactly the order total.
// A different amount means the cart changed after the session was opened; the
// order then stays unpaid for manual reconciliation.
func (s *OrderService) chargeCovers(order *domain.Order, cs *payment.CompletedSession) bool {
	if !cs.Paid() {
		return false
	}
	expected := pricing.ToMinorUnits(order.FinalTotal)
	if cs.AmountTotal != expected {
		s.log.Error().
			Str("session_id", cs.SessionID).
			Str("cart_id", order.CartID.Hex()).
			Str("user_id", order.UserID).
			Int64("charged", cs.AmountTotal).
			Int64("expected", expected).
			Msg("gateway charge does not match order total")
		return false
	}
	return true
}

// place inserts the order, reserves stock, empties the cart and records the
// created event as one unit when the transactor supports it.
func (s *OrderService) place(ctx context.Context, cart *domain.Cart, order *domain.Order) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		if err := s.products.AdjustStock(ctx, order.ReserveStock()); err != nil {
			return err
		}
		// work on a copy so a retried transaction starts from the loaded version
		cleared := *cart
		cleared.Clear()
		if err := s.carts.Save(ctx, &cleared); err != nil {
			return err
		}
		return s.record(ctx, events.OrderCreated, order)
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("user_id", order.UserID).
			Str("cart_id", cart.ID.Hex()).
			Str("order_id", order.ID.Hex()).
			Msg("order placement failed")
		return translate(err)
	}

	invalidateCart(ctx, s.cache, s.log, cart.UserID)
	s.log.Info().
		Str("user_id", order.UserID).
		Str("order_id", order.ID.Hex()).
		Str("payment_method", string(order.PaymentMethod)).
		Float64("final_total", order.FinalTotal).
		Msg("order created")
	return nil
}

func (s *OrderService) loadCheckoutCart(ctx context.Context, userID string, cartID primitive.ObjectID) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, translate(err)
	}
	if cart.UserID != userID {
		return nil, translate(ErrNotCartUser)
	}
	if cart.IsEmpty() {
		return nil, translate(ErrEmptyCart)
	}
	return cart, nil
}

func (s *OrderService) MarkPaid(ctx context.Context, orderID primitive.ObjectID) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.OrderPaid, func(o *domain.Order, now time.Time) error {
		return o.MarkPaid(now)
	})
}

func (s *OrderService) MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.OrderDelivered, func(o *domain.Order, now time.Time) error {
		return o.MarkDelivered(now)
	})
}

func (s *OrderService) transition(ctx context.Context, orderID primitive.ObjectID, eventType string, fn func(*domain.Order, time.Time) error) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, translate(err)
	}
	if err := fn(order, s.now().UTC()); err != nil {
		return nil, translate(err)
	}

	var saved domain.Order
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// a retried transaction starts again from the loaded version
		saved = *order
		if err := s.orders.Update(ctx, &saved); err != nil {
			return err
		}
		return s.record(ctx, eventType, &saved)
	})
	if err != nil {
		return nil, translate(err)
	}
	return &saved, nil
}

// Cancel flags the order cancelled and returns its stock. Only the owner or an
// admin may cancel; anyone else sees NotFound.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, orderID primitive.ObjectID) (*domain.Order, error) {
	order, err := s.getVisible(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(s.now().UTC()); err != nil {
		return nil, translate(err)
	}

	// the conditional update admits one cancellation, so stock is released once
	var saved domain.Order
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		saved = *order
		if err := s.orders.Update(ctx, &saved); err != nil {
			return err
		}
		if err := s.products.AdjustStock(ctx, saved.ReleaseStock()); err != nil {
			return err
		}
		return s.record(ctx, events.OrderCancelled, &saved)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrOrderCancelled) {
			s.log.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("order cancellation failed")
		}
		return nil, translate(err)
	}
	return &saved, nil
}

func (s *OrderService) Get(ctx context.Context, actor Actor, orderID primitive.ObjectID) (*domain.Order, error) {
	return s.getVisible(ctx, actor, orderID)
}

// List returns the caller's orders, or every order for an admin.
func (s *OrderService) List(ctx context.Context, actor Actor) ([]*domain.Order, error) {
	filter := repository.OrderFilter{UserID: actor.UserID}
	if actor.Admin {
		filter.UserID = ""
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

func (s *OrderService) getVisible(ctx context.Context, actor Actor, orderID primitive.ObjectID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, translate(err)
	}
	if !actor.owns(order.UserID) {
		return nil, translate(repository.ErrOrderNotFound)
	}
	return order, nil
}

// record must run inside the caller's transaction so the event commits with
// the order change.
func (s *OrderService) record(ctx context.Context, eventType string, order *domain.Order) error {
	return s.events.Publish(ctx, events.NewOrderEvent(eventType, order, s.now()))
}
