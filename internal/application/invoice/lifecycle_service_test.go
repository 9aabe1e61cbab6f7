package invoice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
)

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*invoice.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoice.InvoiceFilter) (*shared.Paginated[invoice.Invoice], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[invoice.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEnqueuer records enqueued tasks
type MockEnqueuer struct {
	mock.Mock
	tasks []*task.Task
}

func (m *MockEnqueuer) Enqueue(ctx context.Context, tasks ...*task.Task) error {
	m.tasks = append(m.tasks, tasks...)
	args := m.Called(ctx, tasks)
	return args.Error(0)
}

func (m *MockEnqueuer) kinds() []task.Kind {
	out := make([]task.Kind, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Kind)
	}
	return out
}

func newTestDraft(tenantID uuid.UUID) *invoice.InvoiceDraft {
	return &invoice.InvoiceDraft{
		TenantID:      tenantID,
		CustomerName:  "Jane",
		CustomerPhone: "+2348031234567",
		Amount:        decimal.NewFromInt(50000),
		Currency:      valueobject.NGN,
		Description:   "logo design",
	}
}

func newPendingInvoice(t *testing.T, tenantID uuid.UUID) *invoice.Invoice {
	inv, err := invoice.NewInvoice(
		tenantID, "INV-2026-0001", "Jane", "+2348031234567",
		valueobject.NewMoneyNGN(decimal.NewFromInt(50000)), "logo design", nil, nil,
	)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func TestLifecycleService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockInvoiceRepository)
	enq := new(MockEnqueuer)
	svc := NewLifecycleService(repo, enq, zap.NewNop())

	repo.On("CountForTenant", ctx, tenantID).Return(int64(4), nil)
	repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)
	enq.On("Enqueue", ctx, mock.Anything).Return(nil)

	inv, err := svc.Create(ctx, newTestDraft(tenantID))

	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPending, inv.Status)
	assert.Regexp(t, `^INV-\d{4}-0005$`, inv.InvoiceNumber)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, valueobject.NGN, inv.Currency)

	assert.ElementsMatch(t,
		[]task.Kind{task.KindRenderInvoice, task.KindSendNotification, task.KindSendDocument},
		enq.kinds())

	// Document delivery waits on the render outcome
	var render, send *task.Task
	for _, tk := range enq.tasks {
		switch tk.Kind {
		case task.KindRenderInvoice:
			render = tk
		case task.KindSendDocument:
			send = tk
		}
	}
	require.NotNil(t, render)
	require.NotNil(t, send)
	require.NotNil(t, send.DependsOn)
	assert.Equal(t, render.ID, *send.DependsOn)
}

func TestLifecycleService_PaymentConfirmed(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("pending invoice settles", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		svc := NewLifecycleService(repo, enq, zap.NewNop())
		inv := newPendingInvoice(t, tenantID)

		repo.On("FindByID", ctx, inv.ID).Return(inv, nil)
		repo.On("SaveWithLock", ctx, inv).Return(nil)
		enq.On("Enqueue", ctx, mock.Anything).Return(nil)

		result, err := svc.PaymentConfirmed(ctx, inv.ID, &invoice.ProviderEvent{
			Provider:  "paystack",
			Reference: "trx_123",
			Status:    invoice.ProviderEventSuccess,
		})

		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, result.Status)
		assert.Equal(t, "paystack", result.PaymentProvider)

		// Exactly one notification per successful transition
		notifications := 0
		for _, k := range enq.kinds() {
			if k == task.KindSendNotification {
				notifications++
			}
		}
		assert.Equal(t, 1, notifications)
	})

	t.Run("already paid is a silent no-op", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		svc := NewLifecycleService(repo, enq, zap.NewNop())
		inv := newPendingInvoice(t, tenantID)
		require.NoError(t, inv.MarkPaid("paystack", "trx_123"))

		repo.On("FindByID", ctx, inv.ID).Return(inv, nil)

		_, err := svc.PaymentConfirmed(ctx, inv.ID, &invoice.ProviderEvent{
			Provider: "stripe", Reference: "trx_456",
		})

		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Empty(t, enq.tasks, "illegal transition enqueues nothing")
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("race loser observes invalid transition", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		svc := NewLifecycleService(repo, enq, zap.NewNop())

		fresh := newPendingInvoice(t, tenantID)
		settled := newPendingInvoice(t, tenantID)
		settled.ID = fresh.ID
		require.NoError(t, settled.MarkPaid("manual", ""))

		// First read sees pending, but the save loses the race; the
		// replay reads the settled row.
		repo.On("FindByID", ctx, fresh.ID).Return(fresh, nil).Once()
		repo.On("SaveWithLock", ctx, fresh).Return(shared.ErrConcurrencyConflict).Once()
		repo.On("FindByID", ctx, fresh.ID).Return(settled, nil).Once()

		_, err := svc.PaymentConfirmed(ctx, fresh.ID, &invoice.ProviderEvent{
			Provider: "paystack", Reference: "trx_123",
		})

		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Empty(t, enq.tasks)
	})
}

func TestLifecycleService_ManualConfirm(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("owner confirms", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		svc := NewLifecycleService(repo, enq, zap.NewNop())
		inv := newPendingInvoice(t, tenantID)

		repo.On("FindByID", ctx, inv.ID).Return(inv, nil)
		repo.On("SaveWithLock", ctx, inv).Return(nil)
		enq.On("Enqueue", ctx, mock.Anything).Return(nil)

		result, err := svc.ManualConfirm(ctx, tenantID, inv.ID)

		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, result.Status)
		assert.Equal(t, "manual", result.PaymentProvider)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		svc := NewLifecycleService(repo, enq, zap.NewNop())
		inv := newPendingInvoice(t, tenantID)

		repo.On("FindByID", ctx, inv.ID).Return(inv, nil)

		_, err := svc.ManualConfirm(ctx, uuid.New(), inv.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Equal(t, invoice.StatusPending, inv.Status)
		assert.Empty(t, enq.tasks)
	})
}

func TestLifecycleService_PaymentFailed(t *testing.T) {
	ctx := context.Background()
	repo := new(MockInvoiceRepository)
	enq := new(MockEnqueuer)
	svc := NewLifecycleService(repo, enq, zap.NewNop())
	inv := newPendingInvoice(t, uuid.New())

	repo.On("FindByID", ctx, inv.ID).Return(inv, nil)
	repo.On("SaveWithLock", ctx, inv).Return(nil)
	enq.On("Enqueue", ctx, mock.Anything).Return(nil)

	result, err := svc.PaymentFailed(ctx, inv.ID, &invoice.ProviderEvent{
		Provider:      "paystack",
		FailureReason: "card declined",
	})

	require.NoError(t, err)
	assert.Equal(t, invoice.StatusFailed, result.Status)
	assert.Equal(t, []task.Kind{task.KindSendNotification}, enq.kinds())
}

func TestLifecycleService_Refund(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockInvoiceRepository)
	enq := new(MockEnqueuer)
	svc := NewLifecycleService(repo, enq, zap.NewNop())

	inv := newPendingInvoice(t, tenantID)
	require.NoError(t, inv.MarkPaid("paystack", "trx_1"))

	repo.On("FindByID", ctx, inv.ID).Return(inv, nil)
	repo.On("SaveWithLock", ctx, inv).Return(nil)
	enq.On("Enqueue", ctx, mock.Anything).Return(nil)

	result, err := svc.Refund(ctx, tenantID, inv.ID)

	require.NoError(t, err)
	assert.Equal(t, invoice.StatusRefunded, result.Status)
}

// MockEventPublisher records published domain events
type MockEventPublisher struct {
	mock.Mock
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.events = append(m.events, events...)
	args := m.Called(ctx, events)
	return args.Error(0)
}

func TestLifecycleService_DrainsDomainEvents(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("create publishes InvoiceCreated and clears the aggregate", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		pub := new(MockEventPublisher)
		svc := NewLifecycleService(repo, enq, zap.NewNop(), WithEventPublisher(pub))

		repo.On("CountForTenant", ctx, tenantID).Return(int64(0), nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)
		enq.On("Enqueue", ctx, mock.Anything).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		inv, err := svc.Create(ctx, newTestDraft(tenantID))
		require.NoError(t, err)

		require.Len(t, pub.events, 1)
		assert.Equal(t, "InvoiceCreated", pub.events[0].EventType())
		assert.Equal(t, inv.ID, pub.events[0].AggregateID())
		assert.Empty(t, inv.GetDomainEvents())
	})

	t.Run("manual confirm publishes InvoicePaid once", func(t *testing.T) {
		inv := newPendingInvoice(t, tenantID)
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		pub := new(MockEventPublisher)
		svc := NewLifecycleService(repo, enq, zap.NewNop(), WithEventPublisher(pub))

		repo.On("FindByID", ctx, inv.ID).Return(inv, nil)
		repo.On("SaveWithLock", ctx, inv).Return(nil)
		enq.On("Enqueue", ctx, mock.Anything).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		_, err := svc.ManualConfirm(ctx, tenantID, inv.ID)
		require.NoError(t, err)

		require.Len(t, pub.events, 1)
		assert.Equal(t, "InvoicePaid", pub.events[0].EventType())
		assert.Empty(t, inv.GetDomainEvents())
		pub.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("publish failure does not fail the transition", func(t *testing.T) {
		inv := newPendingInvoice(t, tenantID)
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		pub := new(MockEventPublisher)
		svc := NewLifecycleService(repo, enq, zap.NewNop(), WithEventPublisher(pub))

		repo.On("FindByID", ctx, inv.ID).Return(inv, nil)
		repo.On("SaveWithLock", ctx, inv).Return(nil)
		enq.On("Enqueue", ctx, mock.Anything).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(assert.AnError)

		confirmed, err := svc.ManualConfirm(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, confirmed.Status)
	})

	t.Run("no publisher still clears the aggregate", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		enq := new(MockEnqueuer)
		svc := NewLifecycleService(repo, enq, zap.NewNop())

		repo.On("CountForTenant", ctx, tenantID).Return(int64(0), nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)
		enq.On("Enqueue", ctx, mock.Anything).Return(nil)

		inv, err := svc.Create(ctx, newTestDraft(tenantID))
		require.NoError(t, err)
		assert.Empty(t, inv.GetDomainEvents())
	})
}
