package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// InvoiceModel is the persistence model for the Invoice domain aggregate.
// Line items are frozen at creation, so they live as a jsonb column
// rather than a child table.
type InvoiceModel struct {
	TenantAggregateModel
	// Uniqueness of (tenant_id, invoice_number) is enforced by migration.
	InvoiceNumber    string                 `gorm:"type:varchar(50);not null;index"`
	CustomerName     string                 `gorm:"type:varchar(200);not null"`
	CustomerPhone    string                 `gorm:"type:varchar(50)"`
	Amount           decimal.Decimal        `gorm:"type:decimal(20,4);not null"`
	Currency         valueobject.Currency   `gorm:"type:varchar(3);not null"`
	Description      string                 `gorm:"type:text"`
	LineItemsJSON    string                 `gorm:"column:line_items;type:jsonb;default:'[]'"`
	Status           invoice.InvoiceStatus  `gorm:"type:varchar(30);not null;default:'pending';index"`
	DueDate          *time.Time
	PaidAt           *time.Time
	FailedAt         *time.Time
	RefundedAt       *time.Time
	FailureReason    string `gorm:"type:text"`
	PaymentProvider  string `gorm:"type:varchar(50)"`
	PaymentReference string `gorm:"type:varchar(100);index"`
	DocumentRef      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		InvoiceNumber:    m.InvoiceNumber,
		CustomerName:     m.CustomerName,
		CustomerPhone:    m.CustomerPhone,
		Amount:           m.Amount,
		Currency:         m.Currency,
		Description:      m.Description,
		Status:           m.Status,
		DueDate:          m.DueDate,
		PaidAt:           m.PaidAt,
		FailedAt:         m.FailedAt,
		RefundedAt:       m.RefundedAt,
		FailureReason:    m.FailureReason,
		PaymentProvider:  m.PaymentProvider,
		PaymentReference: m.PaymentReference,
		DocumentRef:      m.DocumentRef,
	}
	m.PopulateTenantAggregateRoot(&inv.TenantAggregateRoot)

	if m.LineItemsJSON != "" {
		var items []invoice.LineItem
		// A malformed column yields an invoice without line detail; the
		// frozen amount is still authoritative.
		if err := json.Unmarshal([]byte(m.LineItemsJSON), &items); err == nil {
			inv.LineItems = items
		}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice aggregate
func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerName = inv.CustomerName
	m.CustomerPhone = inv.CustomerPhone
	m.Amount = inv.Amount
	m.Currency = inv.Currency
	m.Description = inv.Description
	m.Status = inv.Status
	m.DueDate = inv.DueDate
	m.PaidAt = inv.PaidAt
	m.FailedAt = inv.FailedAt
	m.RefundedAt = inv.RefundedAt
	m.FailureReason = inv.FailureReason
	m.PaymentProvider = inv.PaymentProvider
	m.PaymentReference = inv.PaymentReference
	m.DocumentRef = inv.DocumentRef

	if b, err := json.Marshal(inv.LineItems); err == nil {
		m.LineItemsJSON = string(b)
	} else {
		m.LineItemsJSON = "[]"
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
