package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

const AggregateTypeInvoice = "Invoice"

// InvoiceCreatedEvent is raised when a new invoice enters the pipeline
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	InvoiceNumber string               `json:"invoice_number"`
	CustomerName  string               `json:"customer_name"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      valueobject.Currency `json:"currency"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		Amount:          inv.Amount,
		Currency:        inv.Currency,
	}
}

// InvoicePaidEvent is raised when an invoice is settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentProvider  string          `json:"payment_provider"`
	PaymentReference string          `json:"payment_reference"`
	PaidAt           time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("InvoicePaid", AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		Amount:           inv.Amount,
		PaymentProvider:  inv.PaymentProvider,
		PaymentReference: inv.PaymentReference,
		PaidAt:           paidAt,
	}
}

// InvoiceFailedEvent is raised when a payment attempt fails
type InvoiceFailedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	FailureReason string    `json:"failure_reason"`
}

// EventType returns the event type name
func (e *InvoiceFailedEvent) EventType() string {
	return "InvoiceFailed"
}

// NewInvoiceFailedEvent creates a new InvoiceFailedEvent
func NewInvoiceFailedEvent(inv *Invoice) *InvoiceFailedEvent {
	return &InvoiceFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceFailed", AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		FailureReason:   inv.FailureReason,
	}
}

// InvoiceRefundedEvent is raised when a paid invoice is refunded
type InvoiceRefundedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	RefundedAt    time.Time       `json:"refunded_at"`
}

// EventType returns the event type name
func (e *InvoiceRefundedEvent) EventType() string {
	return "InvoiceRefunded"
}

// NewInvoiceRefundedEvent creates a new InvoiceRefundedEvent
func NewInvoiceRefundedEvent(inv *Invoice) *InvoiceRefundedEvent {
	refundedAt := time.Now()
	if inv.RefundedAt != nil {
		refundedAt = *inv.RefundedAt
	}
	return &InvoiceRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceRefunded", AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Amount:          inv.Amount,
		RefundedAt:      refundedAt,
	}
}
