package invoice

import (
	"time"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
)

// PaymentOutcome is what a verified payment event did to its invoice
type PaymentOutcome string

const (
	OutcomeConfirmed PaymentOutcome = "confirmed"
	OutcomeFailed    PaymentOutcome = "failed"
	// OutcomeOrphaned records a verified event whose invoice reference
	// matched nothing. Accepted to stop provider redelivery.
	OutcomeOrphaned PaymentOutcome = "orphaned"
	// OutcomeIgnored records a verified event whose invoice was already
	// settled, so no transition occurred.
	OutcomeIgnored PaymentOutcome = "ignored"
)

// PaymentEvent records one verified webhook delivery from a payment
// provider. The (provider, external_event_id) pair is unique at the
// database level; an insert conflict is how redelivered events are
// detected under concurrency.
type PaymentEvent struct {
	shared.BaseEntity
	Provider         string         `json:"provider"`
	ExternalEventID  string         `json:"external_event_id"`
	InvoiceReference string         `json:"invoice_reference"`
	Verified         bool           `json:"verified"`
	Outcome          PaymentOutcome `json:"outcome"`
	ProcessedAt      *time.Time     `json:"processed_at"`
}

// NewPaymentEvent creates a verified payment event awaiting processing
func NewPaymentEvent(provider, externalEventID, invoiceReference string) (*PaymentEvent, error) {
	if provider == "" {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Provider cannot be empty")
	}
	if externalEventID == "" {
		return nil, shared.NewDomainError("INVALID_EVENT_ID", "External event ID cannot be empty")
	}
	return &PaymentEvent{
		BaseEntity:       shared.NewBaseEntity(),
		Provider:         provider,
		ExternalEventID:  externalEventID,
		InvoiceReference: invoiceReference,
		Verified:         true,
	}, nil
}

// RecordOutcome stamps what processing this event did
func (pe *PaymentEvent) RecordOutcome(outcome PaymentOutcome) {
	now := time.Now()
	pe.Outcome = outcome
	pe.ProcessedAt = &now
	pe.UpdatedAt = now
}
