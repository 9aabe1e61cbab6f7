package intake

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// ReceiptExtractor turns a document image into an ExtractionResult. It
// fetches the channel media, normalizes the image for the vision
// backend, and owns all coercion of the backend's loosely typed output:
// formatted amounts, missing quantities, unknown currency labels. A
// backend failure degrades to a low-confidence no-intent result; an
// image never errors out of the pipeline.
type ReceiptExtractor struct {
	media  MediaFetcher
	vision VisionReader
	logger *zap.Logger
}

// NewReceiptExtractor creates a receipt extractor
func NewReceiptExtractor(media MediaFetcher, vision VisionReader, logger *zap.Logger) *ReceiptExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptExtractor{media: media, vision: vision, logger: logger}
}

// Extract downloads the referenced image, normalizes it, and coerces
// the backend's answer into a structured result
func (e *ReceiptExtractor) Extract(ctx context.Context, mediaRef string, hint ReceiptHint) intake.ExtractionResult {
	raw, err := e.media.FetchMedia(ctx, mediaRef)
	if err != nil {
		e.logger.Warn("media fetch failed, degrading to clarification",
			zap.String("media_ref", mediaRef),
			zap.Error(err))
		return intake.NoIntentResult(intake.ModalityImage, "", "document could not be read")
	}

	img, err := normalizeReceiptImage(raw)
	if err != nil {
		e.logger.Warn("image could not be normalized, degrading to clarification",
			zap.String("media_ref", mediaRef),
			zap.Error(err))
		return intake.NoIntentResult(intake.ModalityImage, "", "document could not be read")
	}

	receipt, err := e.vision.ReadReceipt(ctx, img, hint)
	if err != nil {
		e.logger.Warn("vision backend failed, degrading to clarification",
			zap.String("media_ref", mediaRef),
			zap.Error(err))
		return intake.NoIntentResult(intake.ModalityImage, "", "document could not be read")
	}
	if receipt == nil {
		return intake.NoIntentResult(intake.ModalityImage, "", "document could not be read")
	}

	r := intake.ExtractionResult{
		Modality:      intake.ModalityImage,
		CustomerName:  strings.TrimSpace(receipt.CustomerName),
		CustomerPhone: strings.TrimSpace(receipt.CustomerPhone),
		Description:   strings.TrimSpace(receipt.Description),
		RawText:       receipt.RawText,
	}

	if amt, ok := coerceAmount(receipt.Amount); ok {
		r.Amount = amt
	}
	r.Currency = coerceCurrency(receipt.Currency)
	if r.Currency == "" {
		r.Currency = hint.Currency
	}

	for _, line := range receipt.LineItems {
		price, ok := coerceAmount(line.UnitPrice)
		if !ok {
			continue
		}
		r.LineItems = append(r.LineItems, intake.LineItem{
			Description: strings.TrimSpace(line.Description),
			Quantity:    coerceQuantity(line.Quantity),
			UnitPrice:   price,
		})
	}

	// The backend's own confidence is advisory; structural gaps cap it.
	r.Confidence = intake.ClampConfidence(receipt.Confidence)
	if !r.HasAmount() || !r.HasCustomer() {
		r.Confidence = intake.ConfidenceLow
	}
	if !r.HasAmount() && !r.HasCustomer() && r.Description == "" {
		return intake.NoIntentResult(intake.ModalityImage, receipt.RawText, "no invoice fields recognized")
	}
	return r
}

// coerceAmount parses amounts the way documents print them: thousands
// separators and an optional leading currency symbol.
func coerceAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "₦$€£ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	amt, err := decimal.NewFromString(s)
	if err != nil || !amt.IsPositive() {
		return decimal.Zero, false
	}
	return amt, true
}

// coerceQuantity defaults to 1 when the column is missing or unreadable
func coerceQuantity(raw string) int {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q < 1 {
		return 1
	}
	return q
}

// coerceCurrency accepts either an ISO code or a printed symbol/word.
// Unknown labels yield the zero currency so the tenant default applies.
func coerceCurrency(raw string) valueobject.Currency {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if c := valueobject.Currency(strings.ToUpper(s)); c.IsValid() {
		return c
	}
	if c, ok := valueobject.CurrencyFromKeyword(s); ok {
		return c
	}
	return ""
}
