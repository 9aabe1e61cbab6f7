package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withSpanRecorder installs a recording tracer provider for the test
// and restores the previous global provider afterwards.
func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	ctx, span := StartSpan(context.Background(), "intake.process",
		WithAttribute("channel", "whatsapp"),
		WithAttribute("attempt", 2),
	)
	require.NotNil(t, span)
	require.NotNil(t, ctx)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "intake.process", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("channel", "whatsapp"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("attempt", 2))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartServiceSpan(context.Background(), "invoice", "create",
		WithSpanKind(trace.SpanKindServer))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "invoice.create", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
}

func TestSetAttributes(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartSpan(context.Background(), "test")
	SetAttributes(span,
		"invoice_number", "INV-2026-0001",
		"amount", 5000.0,
		"settled", true,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("invoice_number", "INV-2026-0001"))
	assert.Contains(t, attrs, attribute.Float64("amount", 5000.0))
	assert.Contains(t, attrs, attribute.Bool("settled", true))
}

func TestSetAttributes_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "key", "value")
	})
}

func TestRecordError(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, errors.New("provider unreachable"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "provider unreachable", spans[0].Status().Description)
	require.NotEmpty(t, spans[0].Events())
}

func TestRecordError_NilCases(t *testing.T) {
	recorder := withSpanRecorder(t)

	assert.NotPanics(t, func() {
		RecordError(nil, errors.New("err"))
	})

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}
