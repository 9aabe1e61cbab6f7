package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
)

// lockRetries is how many times a transition is replayed after an
// optimistic lock conflict before giving up. The replay re-reads the
// row; a transition that became illegal surfaces as ErrInvalidTransition.
const lockRetries = 3

// LifecycleService owns invoice state transitions and the side-effect
// tasks they trigger. Every successful transition enqueues exactly one
// notification task; an illegal transition enqueues nothing.
type LifecycleService struct {
	invoiceRepo invoice.InvoiceRepository
	enqueuer    task.Enqueuer
	events      shared.EventPublisher
	logger      *zap.Logger
}

// Option configures optional lifecycle service collaborators
type Option func(*LifecycleService)

// WithEventPublisher routes drained domain events to pub after each
// successful save
func WithEventPublisher(pub shared.EventPublisher) Option {
	return func(s *LifecycleService) {
		s.events = pub
	}
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	invoiceRepo invoice.InvoiceRepository,
	enqueuer task.Enqueuer,
	logger *zap.Logger,
	opts ...Option,
) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LifecycleService{
		invoiceRepo: invoiceRepo,
		enqueuer:    enqueuer,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// drainEvents hands the aggregate's recorded events to the publisher
// and clears them. Runs only after a successful save; publish failures
// are logged, never propagated into the transition.
func (s *LifecycleService) drainEvents(ctx context.Context, inv *invoice.Invoice) {
	events := inv.GetDomainEvents()
	inv.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
	}
}

// Create promotes a validated draft to a pending invoice and enqueues
// document rendering plus the confirmation notification.
func (s *LifecycleService) Create(ctx context.Context, draft *invoice.InvoiceDraft) (*invoice.Invoice, error) {
	number, err := s.nextInvoiceNumber(ctx, draft.TenantID)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoney(draft.Amount, draft.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	inv, err := invoice.NewInvoice(
		draft.TenantID,
		number,
		draft.CustomerName,
		draft.CustomerPhone,
		amount,
		draft.Description,
		draft.LineItems,
		draft.DueDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.drainEvents(ctx, inv)

	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("tenant_id", inv.TenantID.String()),
		zap.String("amount", inv.Amount.String()))

	s.enqueueRenderAndNotify(ctx, inv, task.KindRenderInvoice,
		fmt.Sprintf("Invoice %s for %s %s to %s has been created.",
			inv.InvoiceNumber, inv.Currency, inv.Amount.StringFixed(2), inv.CustomerName))

	return inv, nil
}

// ManualConfirm settles an invoice on the owning tenant's say-so
func (s *LifecycleService) ManualConfirm(ctx context.Context, tenantID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *invoice.Invoice) error {
		if inv.TenantID != tenantID {
			return shared.ErrForbidden
		}
		return inv.MarkPaid("manual", "")
	}, func(inv *invoice.Invoice) {
		s.enqueueRenderAndNotify(ctx, inv, task.KindRenderReceipt,
			fmt.Sprintf("Invoice %s has been marked paid.", inv.InvoiceNumber))
	})
}

// PaymentConfirmed settles an invoice from a verified provider event.
// Reachable only through the payment event guard.
func (s *LifecycleService) PaymentConfirmed(ctx context.Context, invoiceID uuid.UUID, event *invoice.ProviderEvent) (*invoice.Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *invoice.Invoice) error {
		return inv.MarkPaid(event.Provider, event.Reference)
	}, func(inv *invoice.Invoice) {
		s.enqueueRenderAndNotify(ctx, inv, task.KindRenderReceipt,
			fmt.Sprintf("Payment received for invoice %s.", inv.InvoiceNumber))
	})
}

// PaymentFailed records a failed payment from a verified provider event
func (s *LifecycleService) PaymentFailed(ctx context.Context, invoiceID uuid.UUID, event *invoice.ProviderEvent) (*invoice.Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *invoice.Invoice) error {
		return inv.MarkFailed(event.Provider, event.Reference, event.FailureReason)
	}, func(inv *invoice.Invoice) {
		s.notify(ctx, inv, fmt.Sprintf("Payment for invoice %s failed: %s",
			inv.InvoiceNumber, event.FailureReason))
	})
}

// RequestConfirmation parks a pending invoice for manual confirmation
func (s *LifecycleService) RequestConfirmation(ctx context.Context, tenantID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *invoice.Invoice) error {
		if inv.TenantID != tenantID {
			return shared.ErrForbidden
		}
		return inv.RequestConfirmation()
	}, func(inv *invoice.Invoice) {
		s.notify(ctx, inv, fmt.Sprintf("Invoice %s is awaiting your confirmation.", inv.InvoiceNumber))
	})
}

// Refund reverses a paid invoice
func (s *LifecycleService) Refund(ctx context.Context, tenantID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *invoice.Invoice) error {
		if inv.TenantID != tenantID {
			return shared.ErrForbidden
		}
		return inv.Refund()
	}, func(inv *invoice.Invoice) {
		s.notify(ctx, inv, fmt.Sprintf("Invoice %s has been refunded.", inv.InvoiceNumber))
	})
}

// GetByID returns an invoice scoped to its owning tenant
func (s *LifecycleService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	return s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
}

// FindByReference resolves an invoice number from a payment event
func (s *LifecycleService) FindByReference(ctx context.Context, reference string) (*invoice.Invoice, error) {
	return s.invoiceRepo.FindByInvoiceNumber(ctx, reference)
}

// List returns a tenant's invoices
func (s *LifecycleService) List(ctx context.Context, tenantID uuid.UUID, filter invoice.InvoiceFilter) (*shared.Paginated[invoice.Invoice], error) {
	return s.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
}

// transition loads, mutates and saves an invoice under optimistic
// locking. A lock conflict means another transition won the race; the
// replay observes the new state and the apply func reports
// ErrInvalidTransition, which is logged and returned without side
// effects. onSuccess runs exactly once, only after a persisted
// transition.
func (s *LifecycleService) transition(
	ctx context.Context,
	invoiceID uuid.UUID,
	apply func(*invoice.Invoice) error,
	onSuccess func(*invoice.Invoice),
) (*invoice.Invoice, error) {
	var inv *invoice.Invoice

	for attempt := 0; attempt < lockRetries; attempt++ {
		var err error
		inv, err = s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return nil, err
		}

		if err := apply(inv); err != nil {
			if errors.Is(err, shared.ErrInvalidTransition) {
				s.logger.Info("Invoice transition refused",
					zap.String("invoice_id", invoiceID.String()),
					zap.String("status", inv.Status.String()))
			}
			return nil, err
		}

		err = s.invoiceRepo.SaveWithLock(ctx, inv)
		if err == nil {
			s.drainEvents(ctx, inv)
			onSuccess(inv)
			return inv, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}

		s.logger.Debug("Invoice transition lost optimistic lock, replaying",
			zap.String("invoice_id", invoiceID.String()),
			zap.Int("attempt", attempt+1))
	}

	return nil, shared.ErrConcurrencyConflict
}

// enqueueRenderAndNotify queues document rendering, the transition
// notification, and document delivery gated on the render outcome.
func (s *LifecycleService) enqueueRenderAndNotify(ctx context.Context, inv *invoice.Invoice, renderKind task.Kind, message string) {
	render := task.New(inv.TenantID, renderKind, task.MustMarshal(task.RenderPayload{InvoiceID: inv.ID}))
	notify := task.New(inv.TenantID, task.KindSendNotification, task.MustMarshal(task.NotificationPayload{
		Recipient: inv.CustomerPhone,
		Message:   message,
	}))
	send := task.New(inv.TenantID, task.KindSendDocument, task.MustMarshal(task.SendDocumentPayload{
		InvoiceID: inv.ID,
		Recipient: inv.CustomerPhone,
	})).After(render.ID)

	if err := s.enqueuer.Enqueue(ctx, render, notify, send); err != nil {
		// The transition is already durable; tasks are recoverable by
		// re-rendering from the invoice record.
		s.logger.Error("Failed to enqueue invoice tasks",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
	}
}

func (s *LifecycleService) notify(ctx context.Context, inv *invoice.Invoice, message string) {
	notify := task.New(inv.TenantID, task.KindSendNotification, task.MustMarshal(task.NotificationPayload{
		Recipient: inv.CustomerPhone,
		Message:   message,
	}))
	if err := s.enqueuer.Enqueue(ctx, notify); err != nil {
		s.logger.Error("Failed to enqueue notification task",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
	}
}

// nextInvoiceNumber derives a per-tenant sequential number
func (s *LifecycleService) nextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	count, err := s.invoiceRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", time.Now().Year(), count+1), nil
}
