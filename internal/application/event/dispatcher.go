// Package event hands aggregate events to the event bus once the aggregate
// has been persisted.
package event

import (
	"context"

	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher publishes and clears the pending events of saved aggregates.
// A nil publisher turns it into a no-op, which keeps services usable in
// tests without a bus.
type Dispatcher struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(publisher shared.EventPublisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{publisher: publisher, logger: logger}
}

// Dispatch publishes the events of each aggregate. Publishing failures are
// logged and do not fail the calling operation; the aggregate is already
// committed.
func (d *Dispatcher) Dispatch(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if d == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		agg.ClearDomainEvents()
		if d.publisher == nil || len(events) == 0 {
			continue
		}
		if err := d.publisher.Publish(ctx, events...); err != nil {
			d.logger.Warn("Failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("count", len(events)),
				zap.Error(err))
		}
	}
}
