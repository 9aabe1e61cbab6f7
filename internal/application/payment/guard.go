package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
)

// ErrProviderNotRegistered is returned when no provider matches the webhook route
var ErrProviderNotRegistered = errors.New("payment guard: provider not registered")

// LifecycleEngine is the slice of the invoice lifecycle the guard may
// invoke. Only first-seen, signature-verified events reach it.
type LifecycleEngine interface {
	FindByReference(ctx context.Context, reference string) (*invoice.Invoice, error)
	PaymentConfirmed(ctx context.Context, invoiceID uuid.UUID, event *invoice.ProviderEvent) (*invoice.Invoice, error)
	PaymentFailed(ctx context.Context, invoiceID uuid.UUID, event *invoice.ProviderEvent) (*invoice.Invoice, error)
}

// AdmitResult reports what admitting a webhook did
type AdmitResult struct {
	Event     *invoice.PaymentEvent
	Outcome   invoice.PaymentOutcome
	Duplicate bool
}

// EventGuard admits payment webhooks: signature verification, then
// at-most-once processing keyed on (provider, external_event_id). The
// database unique constraint is the authority; the idempotency store
// is a fast path that spares redelivered events a transaction.
type EventGuard struct {
	providers   map[string]invoice.PaymentProvider
	eventRepo   invoice.PaymentEventRepository
	lifecycle   LifecycleEngine
	idempotency shared.IdempotencyStore
	idemTTL     time.Duration
	logger      *zap.Logger
}

// EventGuardConfig holds dependencies for the guard
type EventGuardConfig struct {
	Providers   []invoice.PaymentProvider
	EventRepo   invoice.PaymentEventRepository
	Lifecycle   LifecycleEngine
	Idempotency shared.IdempotencyStore
	IdemTTL     time.Duration
	Logger      *zap.Logger
}

// NewEventGuard creates a new payment event guard
func NewEventGuard(cfg EventGuardConfig) *EventGuard {
	providers := make(map[string]invoice.PaymentProvider)
	for _, p := range cfg.Providers {
		providers[p.Name()] = p
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.IdemTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}

	return &EventGuard{
		providers:   providers,
		eventRepo:   cfg.EventRepo,
		lifecycle:   cfg.Lifecycle,
		idempotency: cfg.Idempotency,
		idemTTL:     ttl,
		logger:      logger,
	}
}

// RegisterProvider adds a payment provider to the guard
func (g *EventGuard) RegisterProvider(p invoice.PaymentProvider) {
	g.providers[p.Name()] = p
}

// Admit verifies and processes one webhook delivery. A verification
// failure is rejected and security-logged without touching any state.
// A redelivery returns the previously recorded outcome and never
// re-invokes the lifecycle engine.
func (g *EventGuard) Admit(ctx context.Context, providerName string, payload []byte, signature string) (*AdmitResult, error) {
	provider, ok := g.providers[providerName]
	if !ok {
		return nil, ErrProviderNotRegistered
	}

	event, err := provider.VerifyWebhook(ctx, payload, signature)
	if err != nil {
		if errors.Is(err, invoice.ErrUnsupportedEvent) {
			// Signature checked out; the event type just carries no
			// settlement. Acknowledge so the provider stops resending.
			g.logger.Debug("Payment webhook event type not handled",
				zap.String("provider", providerName))
			return &AdmitResult{Outcome: invoice.OutcomeIgnored}, nil
		}
		g.logger.Warn("Payment webhook rejected",
			zap.String("provider", providerName),
			zap.Int("payload_bytes", len(payload)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", shared.ErrSignatureInvalid, err)
	}

	idemKey := fmt.Sprintf("payment:%s:%s", event.Provider, event.ExternalEventID)
	if g.idempotency != nil {
		if seen, err := g.idempotency.IsProcessed(ctx, idemKey); err == nil && seen {
			return g.recordedOutcome(ctx, event)
		}
		// Store errors fall through to the database constraint
	}

	record, err := invoice.NewPaymentEvent(event.Provider, event.ExternalEventID, event.InvoiceReference)
	if err != nil {
		return nil, err
	}

	if err := g.eventRepo.Create(ctx, record); err != nil {
		if errors.Is(err, shared.ErrDuplicateEvent) {
			g.logger.Info("Duplicate payment event",
				zap.String("provider", event.Provider),
				zap.String("external_event_id", event.ExternalEventID))
			return g.recordedOutcome(ctx, event)
		}
		return nil, err
	}

	outcome := g.process(ctx, record, event)
	record.RecordOutcome(outcome)

	if err := g.eventRepo.Update(ctx, record); err != nil {
		g.logger.Error("Failed to record payment event outcome",
			zap.String("external_event_id", event.ExternalEventID),
			zap.Error(err))
	}
	if g.idempotency != nil {
		if _, err := g.idempotency.MarkProcessed(ctx, idemKey, g.idemTTL); err != nil {
			g.logger.Warn("Failed to mark payment event processed",
				zap.String("external_event_id", event.ExternalEventID),
				zap.Error(err))
		}
	}

	return &AdmitResult{Event: record, Outcome: outcome}, nil
}

// process drives the lifecycle transition for a first-seen event
func (g *EventGuard) process(ctx context.Context, record *invoice.PaymentEvent, event *invoice.ProviderEvent) invoice.PaymentOutcome {
	inv, err := g.lifecycle.FindByReference(ctx, event.InvoiceReference)
	if err != nil {
		// A verified event for an unknown invoice is accepted so the
		// provider stops redelivering; the mismatch is an anomaly for
		// operators, not a retry.
		g.logger.Warn("Payment event references unknown invoice",
			zap.String("provider", event.Provider),
			zap.String("invoice_reference", event.InvoiceReference),
			zap.String("external_event_id", event.ExternalEventID))
		return invoice.OutcomeOrphaned
	}

	if event.Status.IsSuccess() {
		_, err = g.lifecycle.PaymentConfirmed(ctx, inv.ID, event)
	} else {
		_, err = g.lifecycle.PaymentFailed(ctx, inv.ID, event)
	}

	if err != nil {
		if errors.Is(err, shared.ErrInvalidTransition) {
			g.logger.Info("Payment event ignored, invoice already settled",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("external_event_id", event.ExternalEventID))
			return invoice.OutcomeIgnored
		}
		g.logger.Error("Payment event processing failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return invoice.OutcomeIgnored
	}

	if event.Status.IsSuccess() {
		return invoice.OutcomeConfirmed
	}
	return invoice.OutcomeFailed
}

// recordedOutcome returns the stored result of an earlier delivery
func (g *EventGuard) recordedOutcome(ctx context.Context, event *invoice.ProviderEvent) (*AdmitResult, error) {
	record, err := g.eventRepo.FindByProviderEventID(ctx, event.Provider, event.ExternalEventID)
	if err != nil {
		// The fast path can be ahead of a racing insert; surface the
		// duplicate without an outcome rather than reprocessing.
		return &AdmitResult{Duplicate: true}, nil
	}
	return &AdmitResult{Event: record, Outcome: record.Outcome, Duplicate: true}, nil
}
