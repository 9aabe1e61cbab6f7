// Package dispatch implements the background task executors: document
// rendering and storage, channel notifications, document delivery and
// inbound message processing. Each executor is a task handler; a
// returned error means the dispatcher retries the task.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	intakeapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
)

// DocumentStore persists rendered documents and hands out download URLs
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
}

// DocumentRenderer produces PDF documents from invoice state
type DocumentRenderer interface {
	RenderInvoice(tenant *identity.Tenant, inv *invoice.Invoice) ([]byte, error)
	RenderReceipt(tenant *identity.Tenant, inv *invoice.Invoice) ([]byte, error)
}

// ChannelNotifier delivers outbound messages over the chat channel
type ChannelNotifier interface {
	SendText(ctx context.Context, recipient, text string) error
	SendDocument(ctx context.Context, recipient, documentURL, caption, filename string) error
}

// InboundProcessor runs one inbound channel message through the intake
// pipeline
type InboundProcessor interface {
	ProcessMessage(ctx context.Context, msg intake.InboundMessage) (*intakeapp.ProcessResult, error)
}

// Executors bundles the task handlers with their dependencies. Wire
// each method to its task kind on the dispatcher at startup.
type Executors struct {
	invoiceRepo invoice.InvoiceRepository
	tenantRepo  identity.TenantRepository
	renderer    DocumentRenderer
	store       DocumentStore
	notifier    ChannelNotifier
	inbound     InboundProcessor
	logger      *zap.Logger
}

// ExecutorConfig carries the executor dependencies
type ExecutorConfig struct {
	InvoiceRepo invoice.InvoiceRepository
	TenantRepo  identity.TenantRepository
	Renderer    DocumentRenderer
	Store       DocumentStore
	Notifier    ChannelNotifier
	Inbound     InboundProcessor
	Logger      *zap.Logger
}

// NewExecutors creates the task executor set
func NewExecutors(cfg ExecutorConfig) *Executors {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executors{
		invoiceRepo: cfg.InvoiceRepo,
		tenantRepo:  cfg.TenantRepo,
		renderer:    cfg.Renderer,
		store:       cfg.Store,
		notifier:    cfg.Notifier,
		inbound:     cfg.Inbound,
		logger:      logger,
	}
}

// RenderInvoice renders the invoice PDF and attaches its storage key
// to the invoice record
func (e *Executors) RenderInvoice(ctx context.Context, t *task.Task) error {
	return e.render(ctx, t, "invoices", e.renderer.RenderInvoice)
}

// RenderReceipt renders the payment receipt PDF. The receipt replaces
// the invoice as the current document, so a later send_document task
// delivers the receipt.
func (e *Executors) RenderReceipt(ctx context.Context, t *task.Task) error {
	return e.render(ctx, t, "receipts", e.renderer.RenderReceipt)
}

func (e *Executors) render(
	ctx context.Context,
	t *task.Task,
	prefix string,
	renderFn func(*identity.Tenant, *invoice.Invoice) ([]byte, error),
) error {
	var payload task.RenderPayload
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		return fmt.Errorf("invalid render payload: %w", err)
	}

	inv, err := e.invoiceRepo.FindByID(ctx, payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice %s: %w", payload.InvoiceID, err)
	}
	tenant, err := e.tenantRepo.FindByID(ctx, inv.TenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant %s: %w", inv.TenantID, err)
	}

	data, err := renderFn(tenant, inv)
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	key := documentKey(prefix, inv)
	if err := e.store.Put(ctx, key, data, "application/pdf"); err != nil {
		return err
	}

	if err := inv.AttachDocument(key); err != nil {
		return err
	}
	// A conflict here retries the whole task; the re-render writes the
	// same key, so the retry is idempotent.
	if err := e.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return fmt.Errorf("failed to attach document to invoice %s: %w", inv.ID, err)
	}

	e.logger.Info("Document rendered",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("document_key", key),
		zap.Int("bytes", len(data)))

	return nil
}

// SendNotification delivers a plain text message to a channel recipient
func (e *Executors) SendNotification(ctx context.Context, t *task.Task) error {
	var payload task.NotificationPayload
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}
	return e.notifier.SendText(ctx, payload.Recipient, payload.Message)
}

// SendDocument delivers the invoice's current document as a download
// link. The task depends on the render task, so by the time it runs a
// document reference is in place.
func (e *Executors) SendDocument(ctx context.Context, t *task.Task) error {
	var payload task.SendDocumentPayload
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		return fmt.Errorf("invalid send document payload: %w", err)
	}

	inv, err := e.invoiceRepo.FindByID(ctx, payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice %s: %w", payload.InvoiceID, err)
	}
	if inv.DocumentRef == "" {
		return fmt.Errorf("invoice %s has no rendered document", inv.InvoiceNumber)
	}

	url, _, err := e.store.PresignGet(ctx, inv.DocumentRef)
	if err != nil {
		return err
	}

	caption := fmt.Sprintf("Invoice %s from your vendor", inv.InvoiceNumber)
	if inv.Status == invoice.StatusPaid {
		caption = fmt.Sprintf("Receipt for invoice %s", inv.InvoiceNumber)
	}

	return e.notifier.SendDocument(ctx, payload.Recipient, url, caption, path.Base(inv.DocumentRef))
}

// ProcessInbound runs a queued channel message through the intake
// pipeline
func (e *Executors) ProcessInbound(ctx context.Context, t *task.Task) error {
	var payload task.ProcessInboundPayload
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		return fmt.Errorf("invalid inbound payload: %w", err)
	}

	msg := intake.InboundMessage{
		Channel:        payload.Channel,
		SenderIdentity: payload.SenderIdentity,
		Modality:       intake.Modality(payload.Modality),
		Text:           payload.Text,
		MediaRef:       payload.MediaRef,
		ReceivedAt:     payload.ReceivedAt,
	}

	result, err := e.inbound.ProcessMessage(ctx, msg)
	if err != nil {
		return err
	}

	e.logger.Debug("Inbound message processed",
		zap.String("sender", payload.SenderIdentity),
		zap.String("outcome", string(result.Outcome)))

	return nil
}

// documentKey builds the storage key for an invoice document. The key
// is deterministic so a retried render overwrites its own output.
func documentKey(prefix string, inv *invoice.Invoice) string {
	return fmt.Sprintf("%s/%s/%s.pdf", prefix, inv.TenantID, inv.InvoiceNumber)
}
