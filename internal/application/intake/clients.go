package intake

import (
	"context"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// SpeechTranscriber converts an audio blob reference to text.
// Implementations live in infrastructure; the pipeline only needs the
// transcript or an error it can degrade on.
type SpeechTranscriber interface {
	Transcribe(ctx context.Context, mediaRef string) (string, error)
}

// VisionLine is one line item as read off a receipt or invoice image.
// Fields arrive as loosely typed strings from the vision backend and are
// coerced by the receipt extractor.
type VisionLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// VisionReceipt is the raw structured read of a document image. Every
// field is optional; the backend returns whatever it could see.
type VisionReceipt struct {
	CustomerName  string       `json:"customer_name"`
	CustomerPhone string       `json:"customer_phone"`
	Amount        string       `json:"amount"`
	Currency      string       `json:"currency"`
	Description   string       `json:"description"`
	LineItems     []VisionLine `json:"line_items"`
	Confidence    string       `json:"confidence"`
	RawText       string       `json:"raw_text"`
}

// ReceiptHint carries tenant context the vision backend can use to
// disambiguate a document, like which currency a bare "50,000" means.
type ReceiptHint struct {
	Currency valueobject.Currency
}

// VisionReader extracts structured invoice data from a normalized
// image. Implementations live in infrastructure.
type VisionReader interface {
	ReadReceipt(ctx context.Context, image []byte, hint ReceiptHint) (*VisionReceipt, error)
}

// MediaFetcher downloads the raw bytes behind a channel media
// reference. Implementations live in infrastructure.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaRef string) ([]byte, error)
}
