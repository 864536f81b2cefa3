// Package publisher fans domain audit events into an append-only store.
package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"

	audit "biogate/pkg/platform/audit"
)

// Store is the persistence port for audit events.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
	ListBySubject(ctx context.Context, subject string) ([]audit.Event, error)
	ListRecent(ctx context.Context, action string, limit int) ([]audit.Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
	now   func() time.Time
}

type Option func(*Publisher)

// WithClock overrides the timestamp source used for events without one.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event with an id, timestamp and category when missing and appends it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	return p.store.Append(ctx, event)
}

// List returns every event recorded for a registration id.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// ListRecent returns the newest events for an action, most recent first.
func (p *Publisher) ListRecent(ctx context.Context, action string, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, action, limit)
}
