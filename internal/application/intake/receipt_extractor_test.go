package intake

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// testReceiptImage encodes a blank PNG of the given size, standing in
// for a photo uploaded through the channel.
func testReceiptImage(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newExtractorFixture(t *testing.T) (*MockMedia, *MockVision, *ReceiptExtractor) {
	t.Helper()
	media := new(MockMedia)
	vision := new(MockVision)
	return media, vision, NewReceiptExtractor(media, vision, nil)
}

func TestReceiptExtractorCoercesLooseFields(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, "media://img").Return(testReceiptImage(t, 40, 40), nil)
	vision.On("ReadReceipt", mock.Anything, mock.Anything, mock.Anything).Return(&VisionReceipt{
		CustomerName: " Acme Ltd ",
		Amount:       "50,000.00",
		Currency:     "naira",
		Description:  "Logo design",
		LineItems: []VisionLine{
			{Description: "Logo design", Quantity: "", UnitPrice: "₦50,000"},
			{Description: "unreadable", Quantity: "2", UnitPrice: "n/a"},
		},
		Confidence: "high",
	}, nil)

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})

	assert.False(t, r.NoIntent)
	assert.Equal(t, intake.ModalityImage, r.Modality)
	assert.Equal(t, "Acme Ltd", r.CustomerName)
	assert.True(t, decimal.NewFromInt(50000).Equal(r.Amount))
	assert.Equal(t, valueobject.NGN, r.Currency)
	assert.Equal(t, intake.ConfidenceHigh, r.Confidence)

	// The unparseable line is dropped, the blank quantity defaults to 1.
	require.Len(t, r.LineItems, 1)
	assert.Equal(t, 1, r.LineItems[0].Quantity)
	assert.True(t, decimal.NewFromInt(50000).Equal(r.LineItems[0].UnitPrice))
}

func TestReceiptExtractorNormalizesImageForBackend(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	// A phone-sized photo, well past the dimension bound.
	media.On("FetchMedia", mock.Anything, "media://img").Return(testReceiptImage(t, 4000, 3000), nil)

	var sent []byte
	vision.On("ReadReceipt", mock.Anything, mock.MatchedBy(func(img []byte) bool {
		sent = img
		return len(img) > 0
	}), mock.Anything).Return(&VisionReceipt{
		CustomerName: "Acme Ltd",
		Amount:       "5000",
		Description:  "Hosting",
		Confidence:   "high",
	}, nil)

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})
	require.False(t, r.NoIntent)

	decoded, err := jpeg.Decode(bytes.NewReader(sent))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, 1600, bounds.Dx())
	assert.Equal(t, 1200, bounds.Dy())
}

func TestReceiptExtractorHintFillsMissingCurrency(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, mock.Anything).Return(testReceiptImage(t, 40, 40), nil)
	hint := ReceiptHint{Currency: valueobject.USD}
	vision.On("ReadReceipt", mock.Anything, mock.Anything, hint).Return(&VisionReceipt{
		CustomerName: "Acme Ltd",
		Amount:       "5,000",
		Description:  "Hosting",
		Confidence:   "high",
	}, nil)

	r := extractor.Extract(context.Background(), "media://img", hint)

	assert.Equal(t, valueobject.USD, r.Currency)
	vision.AssertExpectations(t)
}

func TestReceiptExtractorStructuralGapsCapConfidence(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, mock.Anything).Return(testReceiptImage(t, 40, 40), nil)
	vision.On("ReadReceipt", mock.Anything, mock.Anything, mock.Anything).Return(&VisionReceipt{
		CustomerName: "Acme Ltd",
		Confidence:   "high",
	}, nil)

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})

	assert.False(t, r.NoIntent)
	assert.Equal(t, intake.ConfidenceLow, r.Confidence)
}

func TestReceiptExtractorUnknownConfidenceDegradesToLow(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, mock.Anything).Return(testReceiptImage(t, 40, 40), nil)
	vision.On("ReadReceipt", mock.Anything, mock.Anything, mock.Anything).Return(&VisionReceipt{
		CustomerName: "Acme Ltd",
		Amount:       "5000",
		Description:  "Hosting",
		Confidence:   "very_sure",
	}, nil)

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})

	assert.Equal(t, intake.ConfidenceLow, r.Confidence)
}

func TestReceiptExtractorMediaFetchFailureIsNoIntent(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, mock.Anything).Return(nil, errors.New("media expired"))

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})

	assert.True(t, r.NoIntent)
	assert.Equal(t, intake.ConfidenceLow, r.Confidence)
	vision.AssertNotCalled(t, "ReadReceipt", mock.Anything, mock.Anything, mock.Anything)
}

func TestReceiptExtractorUndecodableImageIsNoIntent(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, mock.Anything).Return([]byte("not an image"), nil)

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})

	assert.True(t, r.NoIntent)
	vision.AssertNotCalled(t, "ReadReceipt", mock.Anything, mock.Anything, mock.Anything)
}

func TestReceiptExtractorBackendFailureIsNoIntent(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, mock.Anything).Return(testReceiptImage(t, 40, 40), nil)
	vision.On("ReadReceipt", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})

	assert.True(t, r.NoIntent)
	assert.Equal(t, intake.ConfidenceLow, r.Confidence)
}

func TestReceiptExtractorEmptyReadIsNoIntent(t *testing.T) {
	media, vision, extractor := newExtractorFixture(t)
	media.On("FetchMedia", mock.Anything, mock.Anything).Return(testReceiptImage(t, 40, 40), nil)
	vision.On("ReadReceipt", mock.Anything, mock.Anything, mock.Anything).Return(&VisionReceipt{
		RawText:    "blurry",
		Confidence: "low",
	}, nil)

	r := extractor.Extract(context.Background(), "media://img", ReceiptHint{})

	assert.True(t, r.NoIntent)
}

func TestCoerceCurrency(t *testing.T) {
	tests := []struct {
		raw  string
		want valueobject.Currency
	}{
		{"NGN", valueobject.NGN},
		{"usd", valueobject.USD},
		{"naira", valueobject.NGN},
		{"₦", valueobject.NGN},
		{"doubloons", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceCurrency(tt.raw), tt.raw)
	}
}
