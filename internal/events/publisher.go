// Package events records order lifecycle events in the outbox and relays
// them to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/google/uuid"
)

const (
	OrderCreated   = "order.created"
	OrderPaid      = "order.paid"
	OrderDelivered = "order.delivered"
	OrderCancelled = "order.cancelled"
)

type OrderEvent struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	CartID        string               `json:"cart_id"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	FinalTotal    float64              `json:"final_total"`
	Items         []EventItem          `json:"items"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

type EventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func NewOrderEvent(eventType string, o *domain.Order, now time.Time) OrderEvent {
	items := make([]EventItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = EventItem{ProductID: it.ProductID.Hex(), Quantity: it.Quantity}
	}
	return OrderEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		OrderID:       o.ID.Hex(),
		UserID:        o.UserID,
		CartID:        o.CartID.Hex(),
		PaymentMethod: o.PaymentMethod,
		FinalTotal:    o.FinalTotal,
		Items:         items,
		OccurredAt:    now.UTC(),
	}
}

// Publisher accepts an event as part of the caller's unit of work.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// OutboxPublisher stores events next to the order so they commit with it.
// Relay delivers them afterwards.
type OutboxPublisher struct {
	outbox repository.OutboxRepository
}

func NewOutboxPublisher(outbox repository.OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox}
}

func (p *OutboxPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	record := &repository.OutboxEvent{
		EventID:   event.ID,
		Type:      event.Type,
		Key:       event.OrderID,
		Payload:   payload,
		CreatedAt: event.OccurredAt,
	}
	if err := p.outbox.Add(ctx, record); err != nil {
		return fmt.Errorf("failed to record %s: %w", event.Type, err)
	}
	return nil
}
