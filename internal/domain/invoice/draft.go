package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// Required draft fields, reported by name in clarification prompts.
const (
	FieldCustomerName = "customer_name"
	FieldAmount       = "amount"
	FieldCurrency     = "currency"
)

// InvoiceDraft is a validated, not-yet-persisted invoice candidate.
// Promoted to an Invoice by the lifecycle service or discarded when the
// sender answers a clarification with a fresh message.
type InvoiceDraft struct {
	TenantID      uuid.UUID
	CustomerName  string
	CustomerPhone string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Description   string
	LineItems     []LineItem
	DueDate       *time.Time // nil means due on receipt
	CreatedAt     time.Time
}

// ClarificationRequest asks the sender for the fields a draft is
// missing. It names exactly the missing fields; nothing is invented.
type ClarificationRequest struct {
	TenantID      uuid.UUID
	MissingFields []string
	Prompt        string
}

// NewClarificationRequest builds the prompt text from the missing field names
func NewClarificationRequest(tenantID uuid.UUID, missing []string) *ClarificationRequest {
	labels := make([]string, 0, len(missing))
	for _, f := range missing {
		labels = append(labels, strings.ReplaceAll(f, "_", " "))
	}
	return &ClarificationRequest{
		TenantID:      tenantID,
		MissingFields: missing,
		Prompt:        "I could not create the invoice yet. Please provide: " + strings.Join(labels, ", ") + ".",
	}
}

// AssembleDraft merges an extraction result with tenant context.
// Required fields are customer name, a positive amount, and a currency;
// anything missing yields a ClarificationRequest instead of a draft.
// Low-confidence extractions never promote directly, even when all
// required fields happen to be present.
func AssembleDraft(tenantID uuid.UUID, tenantCurrency valueobject.Currency, r intake.ExtractionResult) (*InvoiceDraft, *ClarificationRequest) {
	var missing []string

	if strings.TrimSpace(r.CustomerName) == "" {
		missing = append(missing, FieldCustomerName)
	}
	if !r.HasAmount() {
		missing = append(missing, FieldAmount)
	}

	currency := r.Currency
	if currency == "" || !currency.IsValid() {
		currency = tenantCurrency
	}
	if currency == "" || !currency.IsValid() {
		missing = append(missing, FieldCurrency)
	}

	if r.Confidence == intake.ConfidenceLow && len(missing) == 0 {
		// Nothing is structurally missing but the extraction is too
		// uncertain to bill from; ask the sender to restate the amount.
		missing = append(missing, FieldAmount)
	}

	if len(missing) > 0 {
		return nil, NewClarificationRequest(tenantID, missing)
	}

	draft := &InvoiceDraft{
		TenantID:      tenantID,
		CustomerName:  strings.TrimSpace(r.CustomerName),
		CustomerPhone: r.CustomerPhone,
		Amount:        r.Amount,
		Currency:      currency,
		Description:   strings.TrimSpace(r.Description),
		DueDate:       r.DueDate,
		CreatedAt:     time.Now(),
	}

	for _, li := range r.LineItems {
		draft.LineItems = append(draft.LineItems, NewLineItem(li.Description, decimal.NewFromInt(int64(li.Quantity)), li.UnitPrice))
	}
	if len(draft.LineItems) == 0 {
		desc := draft.Description
		if desc == "" {
			desc = "Services rendered"
		}
		draft.LineItems = []LineItem{NewLineItem(desc, decimal.NewFromInt(1), draft.Amount)}
	}

	return draft, nil
}
