// Package payment talks to the card payment gateway: it opens hosted checkout
// sessions and verifies the callbacks that confirm them.
package payment

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/domain"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnavailable      = errors.New("payment gateway unavailable")
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	// EventAsyncPaymentSucceeded settles a completed session whose payment
	// method confirms later.
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// StatusPaid is the session payment status once funds are captured. Delayed
// methods complete the session as "unpaid" first.
const StatusPaid = "paid"

// Metadata keys carried on the session and read back from the webhook.
const (
	MetaUserID     = "user_id"
	MetaDetails    = "details"
	MetaPhone      = "phone"
	MetaCity       = "city"
	MetaPostalCode = "postal_code"
)

type SessionRequest struct {
	CartID        string
	UserID        string
	CustomerEmail string
	Description   string
	// Amount is the final order total in major units.
	Amount          float64
	Currency        string
	ShippingAddress domain.ShippingAddress
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CompletedSession is the server-to-server confirmation of a session.
// AmountTotal is in minor units.
type CompletedSession struct {
	SessionID         string
	ClientReferenceID string
	PaymentIntentID   string
	PaymentStatus     string
	CustomerEmail     string
	AmountTotal       int64
	Metadata          map[string]string
}

func (s *CompletedSession) UserID() string {
	return s.Metadata[MetaUserID]
}

func (s *CompletedSession) ShippingAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Details:    s.Metadata[MetaDetails],
		Phone:      s.Metadata[MetaPhone],
		City:       s.Metadata[MetaCity],
		PostalCode: s.Metadata[MetaPostalCode],
	}
}

func (s *CompletedSession) Paid() bool {
	return s.PaymentStatus == StatusPaid
}

// WebhookEvent is a verified callback. Session is set only for
// EventCheckoutCompleted and EventAsyncPaymentSucceeded.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *CompletedSession
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

func sessionMetadata(req SessionRequest) map[string]string {
	return map[string]string{
		MetaUserID:     req.UserID,
		MetaDetails:    req.ShippingAddress.Details,
		MetaPhone:      req.ShippingAddress.Phone,
		MetaCity:       req.ShippingAddress.City,
		MetaPostalCode: req.ShippingAddress.PostalCode,
	}
}
