package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"recircle/pkg/requestcontext"
)

// Publisher is the port services emit audit events through.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "recircle_audit_events_dropped_total",
	Help: "Total audit events dropped because the buffer was full",
})

// ChannelPublisher hands events to the worker over a bounded channel. Emit
// never blocks a request: when the buffer is full the event is dropped and
// counted.
type ChannelPublisher struct {
	events chan Event
	logger *slog.Logger
}

func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		events: make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enqueues the event, filling in ID, timestamp, and device metadata
// from context.
func (p *ChannelPublisher) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = requestcontext.Now(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}
	select {
	case p.events <- event:
	default:
		droppedEvents.Inc()
		p.logger.Warn("audit event dropped", "kind", string(event.Kind))
	}
}

// Events exposes the inbox the worker drains.
func (p *ChannelPublisher) Events() <-chan Event {
	return p.events
}

// NopPublisher discards events; tests that don't assert on auditing use it.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) {}
