package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PipelineMetrics tracks the invoice intake pipeline: inbound messages,
// invoice creation, payment events and background task execution.
type PipelineMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	inboundMessageTotal *Counter
	invoiceCreatedTotal *Counter
	paymentEventTotal   *Counter
	taskProcessedTotal  *Counter
	taskDuration        *Histogram
}

// PipelineMetricsConfig holds configuration for pipeline metrics.
type PipelineMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewPipelineMetrics creates a new PipelineMetrics instance.
func NewPipelineMetrics(cfg PipelineMetricsConfig) (*PipelineMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PipelineMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	pm.inboundMessageTotal, err = NewCounter(
		cfg.Meter,
		"suoops_inbound_message_total",
		"Total number of inbound channel messages processed",
		"{messages}",
	)
	if err != nil {
		return nil, err
	}

	pm.invoiceCreatedTotal, err = NewCounter(
		cfg.Meter,
		"suoops_invoice_created_total",
		"Total number of invoices created",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	pm.paymentEventTotal, err = NewCounter(
		cfg.Meter,
		"suoops_payment_event_total",
		"Total number of payment webhook events admitted",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	pm.taskProcessedTotal, err = NewCounter(
		cfg.Meter,
		"suoops_task_processed_total",
		"Total number of background tasks processed",
		"{tasks}",
	)
	if err != nil {
		return nil, err
	}

	pm.taskDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "suoops_task_duration_seconds",
		Description: "Background task execution duration",
		Unit:        "s",
		Boundaries:  TaskDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordInboundMessage records a processed channel message
func (pm *PipelineMetrics) RecordInboundMessage(ctx context.Context, modality, outcome string) {
	pm.inboundMessageTotal.Inc(ctx,
		AttrModality.String(modality),
		AttrOutcome.String(outcome),
	)
}

// RecordInvoiceCreated records a newly created invoice
func (pm *PipelineMetrics) RecordInvoiceCreated(ctx context.Context, tenantID, currency string) {
	pm.invoiceCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID),
		AttrCurrency.String(currency),
	)
}

// RecordPaymentEvent records an admitted payment webhook event
func (pm *PipelineMetrics) RecordPaymentEvent(ctx context.Context, provider, outcome string) {
	pm.paymentEventTotal.Inc(ctx,
		AttrPaymentProvider.String(provider),
		AttrOutcome.String(outcome),
	)
}

// RecordTask records one background task execution with its terminal
// status for this attempt
func (pm *PipelineMetrics) RecordTask(ctx context.Context, kind, status string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		AttrTaskKind.String(kind),
		AttrTaskStatus.String(status),
	}
	pm.taskProcessedTotal.Inc(ctx, attrs...)
	pm.taskDuration.RecordDuration(ctx, duration, attrs...)
}
