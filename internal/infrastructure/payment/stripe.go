package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
)

// ProviderStripe is the route segment and event record name for Stripe
const ProviderStripe = "stripe"

// StripeProvider verifies Stripe webhooks via the official signed-event
// construction. The invoice number travels in payment intent metadata.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider creates a Stripe webhook verifier
func NewStripeProvider(webhookSecret string) *StripeProvider {
	return &StripeProvider{webhookSecret: webhookSecret}
}

// Name returns the provider identifier used in webhook routing
func (p *StripeProvider) Name() string {
	return ProviderStripe
}

// VerifyWebhook checks the Stripe-Signature header and parses the payload
func (p *StripeProvider) VerifyWebhook(ctx context.Context, payload []byte, signature string) (*invoice.ProviderEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("stripe signature: %w", err)
	}

	var status invoice.ProviderEventStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = invoice.ProviderEventSuccess
	case "payment_intent.payment_failed":
		status = invoice.ProviderEventFailure
	default:
		return nil, fmt.Errorf("%w: %s", invoice.ErrUnsupportedEvent, event.Type)
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	failure := ""
	if !status.IsSuccess() {
		failure = "payment declined"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			failure = intent.LastPaymentError.Msg
		}
	}

	return &invoice.ProviderEvent{
		Provider:         ProviderStripe,
		ExternalEventID:  event.ID,
		InvoiceReference: intent.Metadata["invoice_number"],
		Status:           status,
		Amount:           decimal.New(intent.Amount, -2), // minor units
		Reference:        intent.ID,
		FailureReason:    failure,
	}, nil
}

var _ invoice.PaymentProvider = (*StripeProvider)(nil)
