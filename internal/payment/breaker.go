package payment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// BreakerGateway trips after repeated session-creation failures and fails fast
// with ErrUnavailable while open. Webhook parsing is local and bypasses it.
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[*Session]
}

func NewBreakerGateway(next Gateway, s BreakerSettings, log zerolog.Logger) *BreakerGateway {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*Session](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
		// a cancelled request says nothing about the gateway's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerGateway{next: next, cb: cb}
}

func (b *BreakerGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	s, err := b.cb.Execute(func() (*Session, error) {
		return b.next.CreateCheckoutSession(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return s, err
}

func (b *BreakerGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return b.next.ParseWebhook(payload, signature)
}
