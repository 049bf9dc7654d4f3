package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/repository"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	failOn   int // 1-based call that fails; 0 never fails
	calls    int
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil && (m.failOn == 0 || m.failOn == m.calls) {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

type mockOutbox struct {
	mu         sync.Mutex
	events     map[primitive.ObjectID]*repository.OutboxEvent
	addErr     error
	pendingErr error
	markErr    error
}

func newMockOutbox() *mockOutbox {
	return &mockOutbox{events: map[primitive.ObjectID]*repository.OutboxEvent{}}
}

func (m *mockOutbox) Add(_ context.Context, event *repository.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *mockOutbox) Pending(_ context.Context, limit int) ([]*repository.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pendingErr != nil {
		return nil, m.pendingErr
	}
	out := []*repository.OutboxEvent{}
	for _, e := range m.events {
		if e.PublishedAt == nil {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockOutbox) MarkPublished(_ context.Context, id primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	e := m.events[id]
	e.PublishedAt = &at
	e.Attempts++
	return nil
}

func (m *mockOutbox) MarkFailed(_ context.Context, id primitive.ObjectID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[id]
	e.LastError = reason
	e.Attempts++
	return nil
}

func (m *mockOutbox) get(id primitive.ObjectID) repository.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func (m *mockOutbox) pendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.PublishedAt == nil {
			n++
		}
	}
	return n
}
