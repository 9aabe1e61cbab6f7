package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
)

// ProviderPaystack is the route segment and event record name for Paystack
const ProviderPaystack = "paystack"

var errPaystackSignature = errors.New("paystack signature mismatch")

// paystackEnvelope is the webhook body Paystack posts. Amounts arrive
// in kobo; the transaction reference carries our invoice number because
// we set it at initialization.
type paystackEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		ID              int64  `json:"id"`
		Reference       string `json:"reference"`
		Amount          int64  `json:"amount"`
		Currency        string `json:"currency"`
		Status          string `json:"status"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// PaystackProvider verifies Paystack webhooks. Paystack signs the raw
// body with HMAC-SHA512 using the account secret key and sends the hex
// digest in the x-paystack-signature header.
type PaystackProvider struct {
	secretKey string
}

// NewPaystackProvider creates a Paystack webhook verifier
func NewPaystackProvider(secretKey string) *PaystackProvider {
	return &PaystackProvider{secretKey: secretKey}
}

// Name returns the provider identifier used in webhook routing
func (p *PaystackProvider) Name() string {
	return ProviderPaystack
}

// VerifyWebhook checks the HMAC-SHA512 signature and parses the payload
func (p *PaystackProvider) VerifyWebhook(ctx context.Context, payload []byte, signature string) (*invoice.ProviderEvent, error) {
	if !p.verifySignature(payload, signature) {
		return nil, errPaystackSignature
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("paystack payload: %w", err)
	}

	var status invoice.ProviderEventStatus
	switch envelope.Event {
	case "charge.success":
		status = invoice.ProviderEventSuccess
	case "charge.failed", "invoice.payment_failed":
		status = invoice.ProviderEventFailure
	default:
		return nil, fmt.Errorf("%w: %s", invoice.ErrUnsupportedEvent, envelope.Event)
	}

	if envelope.Data.ID == 0 {
		return nil, errors.New("paystack payload: missing transaction id")
	}

	return &invoice.ProviderEvent{
		Provider:         ProviderPaystack,
		ExternalEventID:  strconv.FormatInt(envelope.Data.ID, 10),
		InvoiceReference: envelope.Data.Reference,
		Status:           status,
		Amount:           decimal.New(envelope.Data.Amount, -2), // kobo to naira
		Reference:        envelope.Data.Reference,
		FailureReason:    failureReason(status, envelope.Data.GatewayResponse),
	}, nil
}

func (p *PaystackProvider) verifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(payload)
	expected := mac.Sum(nil)

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sigBytes)
}

func failureReason(status invoice.ProviderEventStatus, gatewayResponse string) string {
	if status.IsSuccess() {
		return ""
	}
	if gatewayResponse == "" {
		return "payment declined"
	}
	return gatewayResponse
}

var _ invoice.PaymentProvider = (*PaystackProvider)(nil)
