// Package eventlog records drained domain events on the structured
// log, giving every aggregate state change a durable audit trail.
package eventlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
)

var _ shared.EventPublisher = (*Publisher)(nil)

// Publisher writes domain events as structured log entries. Delivery
// is terminal here; downstream consumers tail the log stream.
type Publisher struct {
	logger *zap.Logger
}

// NewPublisher creates an event log publisher
func NewPublisher(logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{logger: logger}
}

// Publish logs each event with its aggregate and tenant identifiers
func (p *Publisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.logger.Info("domain event",
			zap.String("event_id", e.EventID().String()),
			zap.String("event_type", e.EventType()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID().String()),
			zap.String("tenant_id", e.TenantID().String()),
			zap.Time("occurred_at", e.OccurredAt()))
	}
	return nil
}
