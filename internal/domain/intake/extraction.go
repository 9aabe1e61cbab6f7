package intake

import (
	"errors"
	"time"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var (
	errMissingSender   = errors.New("inbound message has no sender identity")
	errUnknownModality = errors.New("inbound message has an unknown modality")
	errEmptyPayload    = errors.New("inbound message has an empty payload")
)

// Confidence is a three-level qualitative reliability estimate attached
// to every extraction result.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IsValid checks if the confidence is one of the three levels
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// ClampConfidence coerces an arbitrary upstream confidence label to the
// three-level scale. Unknown labels degrade to low.
func ClampConfidence(label string) Confidence {
	switch Confidence(label) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// LineItem is one extracted invoice line
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ExtractionResult is the structured invoice intent produced by any of
// the extractors. Immutable once produced: extractors return it by
// value and nothing downstream mutates it. Unmatched fields stay at
// their zero value; they are never guessed.
type ExtractionResult struct {
	Modality      Modality
	CustomerName  string
	CustomerPhone string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Description   string
	DueDate       *time.Time
	LineItems     []LineItem
	Confidence    Confidence
	RawText       string

	// NoIntent marks input from which no invoice intent could be read.
	// FailureReason carries a human-readable cause when an upstream
	// extraction backend failed; the pipeline turns either into a
	// clarification prompt rather than an error.
	NoIntent      bool
	FailureReason string
}

// HasAmount reports whether a positive amount was extracted
func (r ExtractionResult) HasAmount() bool {
	return r.Amount.IsPositive()
}

// HasCustomer reports whether a customer name was extracted
func (r ExtractionResult) HasCustomer() bool {
	return r.CustomerName != ""
}

// NoIntentResult builds the explicit "nothing extractable" result for a
// modality. Extractors return this instead of raising so a channel
// session never crashes on unparseable input.
func NoIntentResult(modality Modality, rawText, reason string) ExtractionResult {
	return ExtractionResult{
		Modality:      modality,
		Confidence:    ConfidenceLow,
		RawText:       rawText,
		NoIntent:      true,
		FailureReason: reason,
	}
}

// scoreConfidence applies the shared confidence rule: low if amount or
// name is absent, medium if both present but description missing, high
// otherwise.
func scoreConfidence(r ExtractionResult) Confidence {
	if !r.HasAmount() || !r.HasCustomer() {
		return ConfidenceLow
	}
	if r.Description == "" {
		return ConfidenceMedium
	}
	return ConfidenceHigh
}
