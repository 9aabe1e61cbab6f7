package invoice

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status       InvoiceStatus
	CustomerName string
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds by invoice number across tenants.
	// Payment webhooks carry the number but not the tenant.
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAllForTenant finds all invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (*shared.Paginated[Invoice], error)

	// Save persists an invoice (create or update)
	Save(ctx context.Context, inv *Invoice) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns shared.ErrConcurrencyConflict when the row moved underneath.
	SaveWithLock(ctx context.Context, inv *Invoice) error

	// CountForTenant counts a tenant's invoices, used for numbering
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// PaymentEventRepository defines the interface for payment event persistence
type PaymentEventRepository interface {
	// Create inserts a new payment event. Returns shared.ErrDuplicateEvent
	// when (provider, external_event_id) already exists; the unique
	// constraint makes this atomic under concurrent redelivery.
	Create(ctx context.Context, event *PaymentEvent) error

	// FindByProviderEventID returns the recorded event for a redelivery
	FindByProviderEventID(ctx context.Context, provider, externalEventID string) (*PaymentEvent, error)

	// Update persists outcome changes on an existing event
	Update(ctx context.Context, event *PaymentEvent) error
}
