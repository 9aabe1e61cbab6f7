package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
)

// Outcome classifies what a pipeline run did with a message
type Outcome string

const (
	OutcomeInvoiceCreated Outcome = "invoice_created"
	OutcomeClarification  Outcome = "clarification_requested"
	OutcomeUnregistered   Outcome = "unregistered_sender"
	OutcomeNoIntent       Outcome = "no_intent"
)

const onboardingPrompt = "This number is not registered yet. Sign up at suoops.com to start sending invoices from chat."

const noIntentPrompt = "I couldn't find invoice details in that message. Try something like: \"Invoice Jane 50000 for logo design\"."

// ProcessResult is the terminal state of one pipeline run. Reply is the
// message sent back to the sender, empty when an invoice was created
// (the lifecycle service owns that notification).
type ProcessResult struct {
	Outcome       Outcome
	Invoice       *invoice.Invoice
	Clarification *invoice.ClarificationRequest
	Reply         string
}

// TenantResolver maps a raw channel identity to an active tenant
type TenantResolver interface {
	Resolve(ctx context.Context, rawIdentity string) (*identity.Tenant, error)
}

// InvoiceCreator persists an assembled draft as a new invoice
type InvoiceCreator interface {
	Create(ctx context.Context, draft *invoice.InvoiceDraft) (*invoice.Invoice, error)
}

// PipelineService runs the inbound message pipeline: resolve the
// tenant, extract intent per modality, assemble a draft, then either
// create the invoice or ask the sender for the missing pieces. A run
// always terminates in a reply or an invoice; extraction problems are
// conversation turns, not errors.
type PipelineService struct {
	resolver       TenantResolver
	creator        InvoiceCreator
	speech         SpeechTranscriber
	receipts       *ReceiptExtractor
	clarifications *ClarificationStore
	enqueuer       task.Enqueuer
	logger         *zap.Logger
}

// PipelineConfig carries the pipeline service dependencies
type PipelineConfig struct {
	Resolver       TenantResolver
	Creator        InvoiceCreator
	Speech         SpeechTranscriber
	Receipts       *ReceiptExtractor
	Clarifications *ClarificationStore
	Enqueuer       task.Enqueuer
	Logger         *zap.Logger
}

// NewPipelineService creates a message pipeline service
func NewPipelineService(cfg PipelineConfig) *PipelineService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clarifications := cfg.Clarifications
	if clarifications == nil {
		clarifications = NewClarificationStore(DefaultClarificationTTL)
	}
	return &PipelineService{
		resolver:       cfg.Resolver,
		creator:        cfg.Creator,
		speech:         cfg.Speech,
		receipts:       cfg.Receipts,
		clarifications: clarifications,
		enqueuer:       cfg.Enqueuer,
		logger:         logger,
	}
}

// ProcessMessage runs one inbound message through the pipeline
func (s *PipelineService) ProcessMessage(ctx context.Context, msg intake.InboundMessage) (*ProcessResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	tenant, err := s.resolver.Resolve(ctx, msg.SenderIdentity)
	if err != nil {
		if errors.Is(err, shared.ErrTenantNotFound) {
			s.logger.Info("Dropping message from unregistered sender",
				zap.String("channel", msg.Channel),
				zap.String("sender", msg.SenderIdentity))
			s.reply(ctx, uuid.Nil, msg.SenderIdentity, onboardingPrompt)
			return &ProcessResult{Outcome: OutcomeUnregistered, Reply: onboardingPrompt}, nil
		}
		return nil, err
	}

	result := s.extract(ctx, msg, tenant)

	if result.NoIntent {
		s.logger.Debug("No invoice intent in message",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("modality", msg.Modality.String()),
			zap.String("reason", result.FailureReason))
		s.reply(ctx, tenant.ID, msg.SenderIdentity, noIntentPrompt)
		return &ProcessResult{Outcome: OutcomeNoIntent, Reply: noIntentPrompt}, nil
	}

	draft, clarification := invoice.AssembleDraft(tenant.ID, tenant.Currency, result)
	if clarification != nil {
		// The stored request is superseded in place: each message is
		// evaluated whole, a reply never patches the previous draft.
		s.clarifications.Put(tenant.ID, msg.SenderIdentity, clarification)
		s.reply(ctx, tenant.ID, msg.SenderIdentity, clarification.Prompt)
		return &ProcessResult{
			Outcome:       OutcomeClarification,
			Clarification: clarification,
			Reply:         clarification.Prompt,
		}, nil
	}

	inv, err := s.creator.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("creating invoice from draft: %w", err)
	}
	s.clarifications.Take(tenant.ID, msg.SenderIdentity)

	s.logger.Info("Invoice created from inbound message",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("modality", msg.Modality.String()),
		zap.String("confidence", string(result.Confidence)))

	return &ProcessResult{Outcome: OutcomeInvoiceCreated, Invoice: inv}, nil
}

// extract dispatches on modality and always returns a result; voice and
// image backend failures degrade to no-intent.
func (s *PipelineService) extract(ctx context.Context, msg intake.InboundMessage, tenant *identity.Tenant) intake.ExtractionResult {
	switch msg.Modality {
	case intake.ModalityVoice:
		transcript, err := s.speech.Transcribe(ctx, msg.MediaRef)
		if err != nil {
			s.logger.Warn("speech backend failed, degrading to clarification",
				zap.String("media_ref", msg.MediaRef),
				zap.Error(err))
			return intake.NoIntentResult(intake.ModalityVoice, "", "voice note could not be transcribed")
		}
		return intake.ExtractIntent(intake.NormalizeSpeech(transcript), intake.ModalityVoice)
	case intake.ModalityImage:
		return s.receipts.Extract(ctx, msg.MediaRef, ReceiptHint{Currency: tenant.Currency})
	default:
		return intake.ExtractIntent(msg.Text, intake.ModalityText)
	}
}

// reply enqueues an outbound message to the sender. Best effort: a
// dropped reply only delays the conversation.
func (s *PipelineService) reply(ctx context.Context, tenantID uuid.UUID, recipient, message string) {
	t := task.New(tenantID, task.KindSendNotification, task.MustMarshal(task.NotificationPayload{
		Recipient: recipient,
		Message:   message,
	}))
	if err := s.enqueuer.Enqueue(ctx, t); err != nil {
		s.logger.Error("Failed to enqueue reply",
			zap.String("recipient", recipient),
			zap.Error(err))
	}
}
