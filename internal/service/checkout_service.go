package service

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/payment"
	"github.com/fjod/go_shop/internal/pricing"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckoutService drives the card path: it opens a gateway session for a
// cart and turns the gateway's confirmation into an order.
type CheckoutService struct {
	orders   *OrderService
	gateway  payment.Gateway
	currency string
	log      zerolog.Logger
}

func NewCheckoutService(orders *OrderService, gateway payment.Gateway, currency string, log zerolog.Logger) *CheckoutService {
	return &CheckoutService{orders: orders, gateway: gateway, currency: currency, log: log}
}

// CreateCheckoutSession charges the same final total a cash order from this
// cart would carry.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, actor Actor, cartID primitive.ObjectID, addr domain.ShippingAddress) (*payment.Session, error) {
	cart, err := s.orders.loadCheckoutCart(ctx, actor.UserID, cartID)
	if err != nil {
		return nil, err
	}

	charges := s.orders.charges
	total := pricing.FinalTotal(cart.OrderPrice(), charges.Tax, charges.Shipping)

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		CartID:          cart.ID.Hex(),
		UserID:          actor.UserID,
		CustomerEmail:   actor.Email,
		Description:     "Order for cart " + cart.ID.Hex(),
		Amount:          total,
		Currency:        s.currency,
		ShippingAddress: addr,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", actor.UserID).Str("cart_id", cart.ID.Hex()).Msg("checkout session creation failed")
		if errors.Is(err, payment.ErrUnavailable) {
			return nil, translate(err)
		}
		return nil, apperr.Upstream("payment gateway rejected the checkout session", err)
	}

	s.log.Info().Str("user_id", actor.UserID).Str("cart_id", cart.ID.Hex()).Str("session_id", session.ID).Msg("checkout session created")
	return session, nil
}

// HandleWebhook verifies a gateway callback. Completed sessions create the
// order and asynchronous settlements mark it paid; other events are
// acknowledged with a nil order.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*domain.Order, error) {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, translate(err)
	}
	switch event.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded:
	default:
		s.log.Debug().Str("event", event.Type).Msg("ignoring gateway event")
		return nil, nil
	}
	if event.Session == nil {
		return nil, nil
	}

	order, err := s.orders.CreateCardOrder(ctx, event.Session)
	if errors.Is(err, ErrCartAlreadyOrdered) {
		// redelivery cannot fix this, so the event is acknowledged and the
		// payment is left for a manual refund
		s.log.Error().
			Str("event_id", event.ID).
			Str("session_id", event.Session.SessionID).
			Str("cart_id", event.Session.ClientReferenceID).
			Str("user_id", event.Session.UserID()).
			Int64("amount", event.Session.AmountTotal).
			Msg("payment session completed for a cart that was already checked out")
		return nil, nil
	}
	return order, err
}
