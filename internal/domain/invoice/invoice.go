package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	StatusPending              InvoiceStatus = "pending"
	StatusAwaitingConfirmation InvoiceStatus = "awaiting_confirmation"
	StatusPaid                 InvoiceStatus = "paid"
	StatusFailed               InvoiceStatus = "failed"
	StatusRefunded             InvoiceStatus = "refunded"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAwaitingConfirmation, StatusPaid, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true when no further transition is possible.
// Paid is not terminal: a paid invoice can still be refunded.
func (s InvoiceStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

// CanSettle returns true if the invoice can move to paid or failed
func (s InvoiceStatus) CanSettle() bool {
	return s == StatusPending || s == StatusAwaitingConfirmation
}

// CanRefund returns true if the invoice can be refunded
func (s InvoiceStatus) CanRefund() bool {
	return s == StatusPaid
}

// LineItem is a single billed line owned by an invoice
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// NewLineItem creates a line item. Quantity defaults to 1 when not positive.
func NewLineItem(description string, quantity, unitPrice decimal.Decimal) LineItem {
	if !quantity.IsPositive() {
		quantity = decimal.NewFromInt(1)
	}
	return LineItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
}

// Total returns quantity * unit price
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Invoice is the lifecycle aggregate root. Amount, currency and line
// items are frozen at creation; only status and settlement metadata
// change afterwards. Illegal transitions return ErrInvalidTransition
// and leave the aggregate untouched, which is what makes replayed
// payment webhooks harmless at this layer.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber    string               `json:"invoice_number"`
	CustomerName     string               `json:"customer_name"`
	CustomerPhone    string               `json:"customer_phone"`
	Amount           decimal.Decimal      `json:"amount"`
	Currency         valueobject.Currency `json:"currency"`
	Description      string               `json:"description"`
	LineItems        []LineItem           `json:"line_items"`
	Status           InvoiceStatus        `json:"status"`
	DueDate          *time.Time           `json:"due_date"` // nil means due on receipt
	PaidAt           *time.Time           `json:"paid_at"`
	FailedAt         *time.Time           `json:"failed_at"`
	RefundedAt       *time.Time           `json:"refunded_at"`
	FailureReason    string               `json:"failure_reason"`
	PaymentProvider  string               `json:"payment_provider"`
	PaymentReference string               `json:"payment_reference"`
	DocumentRef      string               `json:"document_ref"`
}

// NewInvoice creates an invoice in pending status
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	customerName string,
	customerPhone string,
	amount valueobject.Money,
	description string,
	lineItems []LineItem,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if len(lineItems) == 0 {
		lineItems = []LineItem{NewLineItem(description, decimal.NewFromInt(1), amount.Amount())}
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerName:        customerName,
		CustomerPhone:       customerPhone,
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		Description:         description,
		LineItems:           lineItems,
		Status:              StatusPending,
		DueDate:             dueDate,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// RequestConfirmation parks the invoice pending a manual confirmation
func (inv *Invoice) RequestConfirmation() error {
	if inv.Status != StatusPending {
		return shared.ErrInvalidTransition
	}

	inv.Status = StatusAwaitingConfirmation
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// MarkPaid settles the invoice. Provider and reference record where the
// confirmation came from; a manual confirmation passes provider "manual".
func (inv *Invoice) MarkPaid(provider, reference string) error {
	if !inv.Status.CanSettle() {
		return shared.ErrInvalidTransition
	}

	now := time.Now()
	inv.Status = StatusPaid
	inv.PaidAt = &now
	inv.PaymentProvider = provider
	inv.PaymentReference = reference
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaidEvent(inv))

	return nil
}

// MarkFailed records a failed payment attempt
func (inv *Invoice) MarkFailed(provider, reference, reason string) error {
	if !inv.Status.CanSettle() {
		return shared.ErrInvalidTransition
	}

	now := time.Now()
	inv.Status = StatusFailed
	inv.FailedAt = &now
	inv.FailureReason = reason
	inv.PaymentProvider = provider
	inv.PaymentReference = reference
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceFailedEvent(inv))

	return nil
}

// Refund reverses a paid invoice
func (inv *Invoice) Refund() error {
	if !inv.Status.CanRefund() {
		return shared.ErrInvalidTransition
	}

	now := time.Now()
	inv.Status = StatusRefunded
	inv.RefundedAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceRefundedEvent(inv))

	return nil
}

// AttachDocument records the rendered document reference
func (inv *Invoice) AttachDocument(ref string) error {
	if ref == "" {
		return shared.NewDomainError("INVALID_DOCUMENT_REF", "Document reference cannot be empty")
	}

	inv.DocumentRef = ref
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// Helper methods

// GetAmountMoney returns the invoice total as Money
func (inv *Invoice) GetAmountMoney() valueobject.Money {
	m, err := valueobject.NewMoney(inv.Amount, inv.Currency)
	if err != nil {
		return valueobject.NewMoneyNGN(inv.Amount)
	}
	return m
}

// IsPending returns true if the invoice has not been settled yet
func (inv *Invoice) IsPending() bool {
	return inv.Status == StatusPending
}

// IsPaid returns true if the invoice is paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

// IsDueOnReceipt returns true when no due date was set
func (inv *Invoice) IsDueOnReceipt() bool {
	return inv.DueDate == nil
}

// LineTotal sums all line items
func (inv *Invoice) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range inv.LineItems {
		total = total.Add(li.Total())
	}
	return total
}
