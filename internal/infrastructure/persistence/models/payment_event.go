package models

import (
	"time"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
)

// PaymentEventModel is the persistence model for verified payment
// webhook deliveries. The (provider, external_event_id) unique index is
// the authority on duplicates: a redelivered event fails the insert and
// is answered from the stored row.
type PaymentEventModel struct {
	BaseModel
	Provider         string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_events_provider_event,priority:1"`
	ExternalEventID  string                 `gorm:"type:varchar(255);not null;uniqueIndex:idx_payment_events_provider_event,priority:2"`
	InvoiceReference string                 `gorm:"type:varchar(100);index"`
	Verified         bool                   `gorm:"not null"`
	Outcome          invoice.PaymentOutcome `gorm:"type:varchar(20)"`
	ProcessedAt      *time.Time
}

// TableName returns the table name for GORM
func (PaymentEventModel) TableName() string {
	return "payment_events"
}

// ToDomain converts the persistence model to a domain PaymentEvent
func (m *PaymentEventModel) ToDomain() *invoice.PaymentEvent {
	return &invoice.PaymentEvent{
		BaseEntity:       m.BaseModel.ToDomain(),
		Provider:         m.Provider,
		ExternalEventID:  m.ExternalEventID,
		InvoiceReference: m.InvoiceReference,
		Verified:         m.Verified,
		Outcome:          m.Outcome,
		ProcessedAt:      m.ProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentEvent
func (m *PaymentEventModel) FromDomain(e *invoice.PaymentEvent) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Provider = e.Provider
	m.ExternalEventID = e.ExternalEventID
	m.InvoiceReference = e.InvoiceReference
	m.Verified = e.Verified
	m.Outcome = e.Outcome
	m.ProcessedAt = e.ProcessedAt
}

// PaymentEventModelFromDomain creates a new persistence model from a domain PaymentEvent
func PaymentEventModelFromDomain(e *invoice.PaymentEvent) *PaymentEventModel {
	m := &PaymentEventModel{}
	m.FromDomain(e)
	return m
}
