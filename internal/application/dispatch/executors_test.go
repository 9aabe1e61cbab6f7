package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	intakeapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
)

// ============================================================================
// Mocks
// ============================================================================

type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*invoice.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoice.InvoiceFilter) (*shared.Paginated[invoice.Invoice], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[invoice.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepo) Save(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepo) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTenantRepo struct {
	mock.Mock
}

func (m *MockTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepo) FindByChannelIdentity(ctx context.Context, channelIdentity string) (*identity.Tenant, error) {
	args := m.Called(ctx, channelIdentity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepo) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepo) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderInvoice(tenant *identity.Tenant, inv *invoice.Invoice) ([]byte, error) {
	args := m.Called(tenant, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRenderer) RenderReceipt(tenant *identity.Tenant, inv *invoice.Invoice) ([]byte, error) {
	args := m.Called(tenant, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockStore) PresignGet(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendText(ctx context.Context, recipient, text string) error {
	args := m.Called(ctx, recipient, text)
	return args.Error(0)
}

func (m *MockNotifier) SendDocument(ctx context.Context, recipient, documentURL, caption, filename string) error {
	args := m.Called(ctx, recipient, documentURL, caption, filename)
	return args.Error(0)
}

type MockInbound struct {
	mock.Mock
}

func (m *MockInbound) ProcessMessage(ctx context.Context, msg intake.InboundMessage) (*intakeapp.ProcessResult, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intakeapp.ProcessResult), args.Error(1)
}

// ============================================================================
// Fixtures
// ============================================================================

type executorMocks struct {
	invoices *MockInvoiceRepo
	tenants  *MockTenantRepo
	renderer *MockRenderer
	store    *MockStore
	notifier *MockNotifier
	inbound  *MockInbound
}

func newTestExecutors(t *testing.T) (*Executors, *executorMocks) {
	t.Helper()
	m := &executorMocks{
		invoices: new(MockInvoiceRepo),
		tenants:  new(MockTenantRepo),
		renderer: new(MockRenderer),
		store:    new(MockStore),
		notifier: new(MockNotifier),
		inbound:  new(MockInbound),
	}
	e := NewExecutors(ExecutorConfig{
		InvoiceRepo: m.invoices,
		TenantRepo:  m.tenants,
		Renderer:    m.renderer,
		Store:       m.store,
		Notifier:    m.notifier,
		Inbound:     m.inbound,
	})
	return e, m
}

func fixtureTenant(t *testing.T) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("whatsapp:+2348012345678", "Ada Stores", valueobject.NGN)
	require.NoError(t, err)
	return tenant
}

func fixtureInvoice(t *testing.T, tenantID uuid.UUID) *invoice.Invoice {
	t.Helper()
	amount, err := valueobject.NewMoney(decimal.NewFromInt(5000), valueobject.NGN)
	require.NoError(t, err)
	inv, err := invoice.NewInvoice(tenantID, "INV-2026-0001", "Chinedu Obi", "+2348098765432",
		amount, "Catering service", nil, nil)
	require.NoError(t, err)
	return inv
}

// ============================================================================
// Tests
// ============================================================================

func TestExecutors_RenderInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("renders stores and attaches document", func(t *testing.T) {
		e, m := newTestExecutors(t)
		tenant := fixtureTenant(t)
		inv := fixtureInvoice(t, tenant.ID)
		pdf := []byte("%PDF-1.4 fake")
		wantKey := "invoices/" + tenant.ID.String() + "/INV-2026-0001.pdf"

		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
		m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		m.renderer.On("RenderInvoice", tenant, inv).Return(pdf, nil)
		m.store.On("Put", ctx, wantKey, pdf, "application/pdf").Return(nil)
		m.invoices.On("SaveWithLock", ctx, inv).Return(nil)

		tk := task.New(tenant.ID, task.KindRenderInvoice, task.MustMarshal(task.RenderPayload{InvoiceID: inv.ID}))
		err := e.RenderInvoice(ctx, tk)
		require.NoError(t, err)

		assert.Equal(t, wantKey, inv.DocumentRef)
		m.store.AssertExpectations(t)
		m.invoices.AssertExpectations(t)
	})

	t.Run("missing invoice fails task", func(t *testing.T) {
		e, m := newTestExecutors(t)
		id := uuid.New()
		m.invoices.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		tk := task.New(uuid.New(), task.KindRenderInvoice, task.MustMarshal(task.RenderPayload{InvoiceID: id}))
		err := e.RenderInvoice(ctx, tk)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("render failure propagates", func(t *testing.T) {
		e, m := newTestExecutors(t)
		tenant := fixtureTenant(t)
		inv := fixtureInvoice(t, tenant.ID)

		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
		m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		m.renderer.On("RenderInvoice", tenant, inv).Return(nil, errors.New("font missing"))

		tk := task.New(tenant.ID, task.KindRenderInvoice, task.MustMarshal(task.RenderPayload{InvoiceID: inv.ID}))
		err := e.RenderInvoice(ctx, tk)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "font missing")
		m.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lock conflict surfaces for retry", func(t *testing.T) {
		e, m := newTestExecutors(t)
		tenant := fixtureTenant(t)
		inv := fixtureInvoice(t, tenant.ID)

		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
		m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		m.renderer.On("RenderInvoice", tenant, inv).Return([]byte("%PDF"), nil)
		m.store.On("Put", ctx, mock.Anything, mock.Anything, "application/pdf").Return(nil)
		m.invoices.On("SaveWithLock", ctx, inv).Return(shared.ErrConcurrencyConflict)

		tk := task.New(tenant.ID, task.KindRenderInvoice, task.MustMarshal(task.RenderPayload{InvoiceID: inv.ID}))
		err := e.RenderInvoice(ctx, tk)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("malformed payload fails task", func(t *testing.T) {
		e, _ := newTestExecutors(t)
		tk := task.New(uuid.New(), task.KindRenderInvoice, []byte("{not json"))
		err := e.RenderInvoice(ctx, tk)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid render payload")
	})
}

func TestExecutors_RenderReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("receipt replaces invoice document", func(t *testing.T) {
		e, m := newTestExecutors(t)
		tenant := fixtureTenant(t)
		inv := fixtureInvoice(t, tenant.ID)
		require.NoError(t, inv.AttachDocument("invoices/"+tenant.ID.String()+"/INV-2026-0001.pdf"))
		require.NoError(t, inv.MarkPaid("paystack", "ref-123"))
		wantKey := "receipts/" + tenant.ID.String() + "/INV-2026-0001.pdf"

		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
		m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		m.renderer.On("RenderReceipt", tenant, inv).Return([]byte("%PDF receipt"), nil)
		m.store.On("Put", ctx, wantKey, mock.Anything, "application/pdf").Return(nil)
		m.invoices.On("SaveWithLock", ctx, inv).Return(nil)

		tk := task.New(tenant.ID, task.KindRenderReceipt, task.MustMarshal(task.RenderPayload{InvoiceID: inv.ID}))
		err := e.RenderReceipt(ctx, tk)
		require.NoError(t, err)
		assert.Equal(t, wantKey, inv.DocumentRef)
	})
}

func TestExecutors_SendNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers text to recipient", func(t *testing.T) {
		e, m := newTestExecutors(t)
		m.notifier.On("SendText", ctx, "+2348098765432", "Invoice INV-2026-0001 created").Return(nil)

		tk := task.New(uuid.New(), task.KindSendNotification, task.MustMarshal(task.NotificationPayload{
			Recipient: "+2348098765432",
			Message:   "Invoice INV-2026-0001 created",
		}))
		require.NoError(t, e.SendNotification(ctx, tk))
		m.notifier.AssertExpectations(t)
	})

	t.Run("gateway failure surfaces for retry", func(t *testing.T) {
		e, m := newTestExecutors(t)
		m.notifier.On("SendText", ctx, mock.Anything, mock.Anything).Return(errors.New("gateway down"))

		tk := task.New(uuid.New(), task.KindSendNotification, task.MustMarshal(task.NotificationPayload{
			Recipient: "+2348098765432",
			Message:   "hello",
		}))
		err := e.SendNotification(ctx, tk)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gateway down")
	})
}

func TestExecutors_SendDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns and delivers invoice document", func(t *testing.T) {
		e, m := newTestExecutors(t)
		tenant := fixtureTenant(t)
		inv := fixtureInvoice(t, tenant.ID)
		key := "invoices/" + tenant.ID.String() + "/INV-2026-0001.pdf"
		require.NoError(t, inv.AttachDocument(key))
		url := "https://storage.example.com/" + key

		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
		m.store.On("PresignGet", ctx, key).Return(url, time.Now().Add(time.Hour), nil)
		m.notifier.On("SendDocument", ctx, "+2348098765432", url,
			"Invoice INV-2026-0001 from your vendor", "INV-2026-0001.pdf").Return(nil)

		tk := task.New(tenant.ID, task.KindSendDocument, task.MustMarshal(task.SendDocumentPayload{
			InvoiceID: inv.ID,
			Recipient: "+2348098765432",
		}))
		require.NoError(t, e.SendDocument(ctx, tk))
		m.notifier.AssertExpectations(t)
	})

	t.Run("paid invoice delivered as receipt", func(t *testing.T) {
		e, m := newTestExecutors(t)
		tenant := fixtureTenant(t)
		inv := fixtureInvoice(t, tenant.ID)
		key := "receipts/" + tenant.ID.String() + "/INV-2026-0001.pdf"
		require.NoError(t, inv.MarkPaid("paystack", "ref-123"))
		require.NoError(t, inv.AttachDocument(key))

		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
		m.store.On("PresignGet", ctx, key).Return("https://s/"+key, time.Now().Add(time.Hour), nil)
		m.notifier.On("SendDocument", ctx, "+2348098765432", "https://s/"+key,
			"Receipt for invoice INV-2026-0001", "INV-2026-0001.pdf").Return(nil)

		tk := task.New(tenant.ID, task.KindSendDocument, task.MustMarshal(task.SendDocumentPayload{
			InvoiceID: inv.ID,
			Recipient: "+2348098765432",
		}))
		require.NoError(t, e.SendDocument(ctx, tk))
		m.notifier.AssertExpectations(t)
	})

	t.Run("no document yet fails task", func(t *testing.T) {
		e, m := newTestExecutors(t)
		tenant := fixtureTenant(t)
		inv := fixtureInvoice(t, tenant.ID)

		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)

		tk := task.New(tenant.ID, task.KindSendDocument, task.MustMarshal(task.SendDocumentPayload{
			InvoiceID: inv.ID,
			Recipient: "+2348098765432",
		}))
		err := e.SendDocument(ctx, tk)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no rendered document")
		m.notifier.AssertNotCalled(t, "SendDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExecutors_ProcessInbound(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards message to pipeline", func(t *testing.T) {
		e, m := newTestExecutors(t)
		received := time.Now().Truncate(time.Second).UTC()

		var gotMsg intake.InboundMessage
		m.inbound.On("ProcessMessage", ctx, mock.MatchedBy(func(msg intake.InboundMessage) bool {
			gotMsg = msg
			return true
		})).Return(&intakeapp.ProcessResult{Outcome: intakeapp.OutcomeInvoiceCreated}, nil)

		tk := task.New(uuid.Nil, task.KindProcessInbound, task.MustMarshal(task.ProcessInboundPayload{
			Channel:        "whatsapp",
			SenderIdentity: "whatsapp:+2348012345678",
			Modality:       "text",
			Text:           "invoice 5000 for catering to Chinedu",
			ReceivedAt:     received,
		}))
		require.NoError(t, e.ProcessInbound(ctx, tk))

		assert.Equal(t, "whatsapp", gotMsg.Channel)
		assert.Equal(t, "whatsapp:+2348012345678", gotMsg.SenderIdentity)
		assert.Equal(t, intake.ModalityText, gotMsg.Modality)
		assert.Equal(t, "invoice 5000 for catering to Chinedu", gotMsg.Text)
		assert.True(t, gotMsg.ReceivedAt.Equal(received))
	})

	t.Run("pipeline error surfaces for retry", func(t *testing.T) {
		e, m := newTestExecutors(t)
		m.inbound.On("ProcessMessage", ctx, mock.Anything).Return(nil, errors.New("speech backend unavailable"))

		tk := task.New(uuid.Nil, task.KindProcessInbound, task.MustMarshal(task.ProcessInboundPayload{
			Channel:        "whatsapp",
			SenderIdentity: "whatsapp:+2348012345678",
			Modality:       "voice",
			MediaRef:       "media/abc",
			ReceivedAt:     time.Now(),
		}))
		err := e.ProcessInbound(ctx, tk)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "speech backend unavailable")
	})

	t.Run("malformed payload fails task", func(t *testing.T) {
		e, _ := newTestExecutors(t)
		tk := task.New(uuid.Nil, task.KindProcessInbound, []byte("not json"))
		err := e.ProcessInbound(ctx, tk)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid inbound payload")
	})
}
