package invoice

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedEvent marks a verified webhook whose event type carries
// no invoice settlement. It is acknowledged and dropped, never retried.
var ErrUnsupportedEvent = errors.New("unsupported provider event type")

// ProviderEventStatus is the settlement status a provider reported
type ProviderEventStatus string

const (
	ProviderEventSuccess ProviderEventStatus = "success"
	ProviderEventFailure ProviderEventStatus = "failure"
)

// IsSuccess returns true for a successful settlement
func (s ProviderEventStatus) IsSuccess() bool {
	return s == ProviderEventSuccess
}

// ProviderEvent is a verified, parsed payment webhook payload
type ProviderEvent struct {
	Provider         string
	ExternalEventID  string
	InvoiceReference string
	Status           ProviderEventStatus
	Amount           decimal.Decimal
	Reference        string // provider-side transaction reference
	FailureReason    string
}

// PaymentProvider verifies and parses webhooks from one payment
// provider. Verification failure must return shared.ErrSignatureInvalid
// wrapped with detail; the payload is never parsed before the
// signature checks out.
type PaymentProvider interface {
	// Name returns the provider identifier used in webhook routing
	Name() string

	// VerifyWebhook checks the signature against the shared secret and
	// parses the payload into a ProviderEvent
	VerifyWebhook(ctx context.Context, payload []byte, signature string) (*ProviderEvent, error)
}
