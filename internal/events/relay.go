package events

import (
	"context"
	"time"

	"github.com/fjod/go_shop/internal/repository"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the relay uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter keys by order id with a hash balancer so one order's events
// land on one partition in order.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

// DiscardWriter drops messages. Used when no brokers are configured so the
// outbox still drains.
type DiscardWriter struct{}

func (DiscardWriter) WriteMessages(context.Context, ...kafka.Message) error { return nil }
func (DiscardWriter) Close() error                                         { return nil }

type RelayConfig struct {
	Interval  time.Duration
	BatchSize int
	Timeout   time.Duration
}

// Relay polls the outbox and writes pending events to Kafka. Delivery is at
// least once; consumers dedupe on the event_id header.
type Relay struct {
	outbox repository.OutboxRepository
	writer MessageWriter
	cfg    RelayConfig
	log    zerolog.Logger
	now    func() time.Time
}

func NewRelay(outbox repository.OutboxRepository, writer MessageWriter, cfg RelayConfig, log zerolog.Logger) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Relay{outbox: outbox, writer: writer, cfg: cfg, log: log, now: time.Now}
}

// Run drains the outbox every interval until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.drain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// drain publishes one batch and returns how many events were delivered. It
// stops at the first failure so later events for the same order never
// overtake an earlier one.
func (r *Relay) drain(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	pending, err := r.outbox.Pending(ctx, r.cfg.BatchSize)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to fetch outbox events")
		return 0
	}

	delivered := 0
	for _, event := range pending {
		if err := r.writer.WriteMessages(ctx, message(event)); err != nil {
			r.log.Warn().Err(err).Str("event_id", event.EventID).Str("event", event.Type).Int("attempts", event.Attempts+1).Msg("failed to relay event")
			if markErr := r.outbox.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				r.log.Error().Err(markErr).Str("event_id", event.EventID).Msg("failed to record relay failure")
			}
			return delivered
		}

		if err := r.outbox.MarkPublished(ctx, event.ID, r.now().UTC()); err != nil {
			// the event goes out again next tick
			r.log.Error().Err(err).Str("event_id", event.EventID).Msg("failed to mark event published")
			return delivered
		}
		delivered++
	}
	return delivered
}

func (r *Relay) Close() error {
	return r.writer.Close()
}

func message(event *repository.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(event.Key),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
}
