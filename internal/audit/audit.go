package audit

import (
	"context"

	"go.uber.org/zap"
)

// Event is a structured audit record. Recording is fire-and-forget: sinks
// must never fail the business operation that emitted the event.
type Event struct {
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Before   any
	After    any
}

type Sink interface {
	Record(ctx context.Context, event Event)
}

// ZapSink writes audit events to the structured log. Delivery to a durable
// audit store is an external concern wired in behind the same interface.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Record(_ context.Context, event Event) {
	s.logger.Info("audit event",
		zap.String("actor", event.Actor),
		zap.String("action", event.Action),
		zap.String("entity", event.Entity),
		zap.String("entityId", event.EntityID),
		zap.Any("before", event.Before),
		zap.Any("after", event.After),
	)
}
