// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BillingMetrics provides business metrics for the tuition billing system.
// It tracks invoice issuance, payment activity, ledger postings, and
// receivables health.
type BillingMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	invoiceIssuedTotal *Counter
	invoiceAmountTotal *Counter
	paymentTotal       *Counter
	paymentAmountTotal *Counter
	ledgerPostingTotal *Counter
	overdueMarkedTotal *Counter

	// Gauge metrics (point-in-time values)
	invoiceCountByStatus   *Gauge
	receivablesOutstanding *FloatGauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	receivablesProvider ReceivablesMetricsProvider
}

// ReceivablesMetricsProvider provides receivables data for periodic metrics
// collection. This interface allows the telemetry layer to query billing
// state without depending on the billing domain directly.
type ReceivablesMetricsProvider interface {
	// GetInvoiceCountByStatus returns the number of invoices per status
	GetInvoiceCountByStatus(ctx context.Context) (map[string]int64, error)

	// GetOutstandingReceivables returns the total unpaid invoice amount
	GetOutstandingReceivables(ctx context.Context) (decimal.Decimal, error)
}

// BillingMetricsConfig holds configuration for billing metrics.
type BillingMetricsConfig struct {
	Meter               metric.Meter
	Logger              *zap.Logger
	CollectInterval     time.Duration // Default: 5 minutes
	ReceivablesProvider ReceivablesMetricsProvider
}

// NewBillingMetrics creates a new BillingMetrics instance.
func NewBillingMetrics(cfg BillingMetricsConfig) (*BillingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BillingMetrics{
		meter:               cfg.Meter,
		logger:              logger,
		stopChan:            make(chan struct{}),
		receivablesProvider: cfg.ReceivablesProvider,
	}

	var err error

	// Invoice metrics
	bm.invoiceIssuedTotal, err = NewCounter(
		cfg.Meter,
		"billing_invoice_issued_total",
		"Total number of invoices issued",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceAmountTotal, err = NewCounter(
		cfg.Meter,
		"billing_invoice_amount_total",
		"Total invoiced amount in centavos",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"billing_payment_total",
		"Total number of payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmountTotal, err = NewCounter(
		cfg.Meter,
		"billing_payment_amount_total",
		"Total paid amount in centavos",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	// Ledger metrics
	bm.ledgerPostingTotal, err = NewCounter(
		cfg.Meter,
		"ledger_posting_total",
		"Total number of balanced entry pairs posted",
		"{postings}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueMarkedTotal, err = NewCounter(
		cfg.Meter,
		"billing_invoice_overdue_marked_total",
		"Total number of invoices marked overdue by the sweep",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	// Receivables gauge metrics
	bm.invoiceCountByStatus, err = NewGauge(
		cfg.Meter,
		"billing_invoice_count",
		"Current number of invoices by status",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.receivablesOutstanding, err = NewFloatGauge(
		cfg.Meter,
		"billing_receivables_outstanding",
		"Total unpaid invoice amount in BRL",
		"{BRL}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Invoice Metrics
// =============================================================================

// RecordInvoiceIssued records an invoice creation event.
// This should be called from the application layer when an invoice is issued.
func (bm *BillingMetrics) RecordInvoiceIssued(ctx context.Context, amount decimal.Decimal) {
	bm.invoiceIssuedTotal.Inc(ctx)

	// Convert to centavos (multiply by 100)
	centavos := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.invoiceAmountTotal.Add(ctx, centavos)
}

// RecordOverdueMarked records the number of invoices marked overdue by a sweep.
func (bm *BillingMetrics) RecordOverdueMarked(ctx context.Context, count int64) {
	bm.overdueMarkedTotal.Add(ctx, count)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// RecordPayment records a payment transaction with its method label.
// Amount should be the gross paid amount.
func (bm *BillingMetrics) RecordPayment(ctx context.Context, method string, amount decimal.Decimal) {
	bm.paymentTotal.Inc(ctx, AttrPaymentMethod.String(method))

	centavos := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.paymentAmountTotal.Add(ctx, centavos, AttrPaymentMethod.String(method))
}

// =============================================================================
// Ledger Metrics
// =============================================================================

// RecordPosting records a balanced entry pair posted to the ledger.
func (bm *BillingMetrics) RecordPosting(ctx context.Context, debitAccountType, creditAccountType string) {
	bm.ledgerPostingTotal.Inc(ctx,
		AttrAccountType.String(debitAccountType),
		AttrEntrySide.String("debit"),
	)
	bm.ledgerPostingTotal.Inc(ctx,
		AttrAccountType.String(creditAccountType),
		AttrEntrySide.String("credit"),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects receivables metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BillingMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BillingMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectReceivablesMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic billing metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic billing metrics collection")
			return
		case <-ticker.C:
			bm.collectReceivablesMetrics(ctx)
		}
	}
}

// collectReceivablesMetrics collects receivables gauge metrics.
func (bm *BillingMetrics) collectReceivablesMetrics(ctx context.Context) {
	if bm.receivablesProvider == nil {
		bm.logger.Debug("No receivables provider configured, skipping receivables metrics collection")
		return
	}

	countByStatus, err := bm.receivablesProvider.GetInvoiceCountByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get invoice counts for metrics collection", zap.Error(err))
	} else {
		for status, count := range countByStatus {
			bm.invoiceCountByStatus.Record(ctx, count, AttrInvoiceStatus.String(status))
		}
	}

	outstanding, err := bm.receivablesProvider.GetOutstandingReceivables(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get outstanding receivables for metrics collection", zap.Error(err))
	} else {
		value, _ := outstanding.Float64()
		bm.receivablesOutstanding.Record(ctx, value)
	}
}

// Stop stops the periodic collection.
func (bm *BillingMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBillingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
