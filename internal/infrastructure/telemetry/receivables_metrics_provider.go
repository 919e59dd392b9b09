// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReceivablesMetricsProvider implements ReceivablesMetricsProvider using
// GORM. It queries the invoices table directly for aggregated metrics.
type GormReceivablesMetricsProvider struct {
	db *gorm.DB
}

// NewGormReceivablesMetricsProvider creates a new GormReceivablesMetricsProvider.
func NewGormReceivablesMetricsProvider(db *gorm.DB) *GormReceivablesMetricsProvider {
	return &GormReceivablesMetricsProvider{db: db}
}

// GetInvoiceCountByStatus returns the number of invoices per status.
func (p *GormReceivablesMetricsProvider) GetInvoiceCountByStatus(ctx context.Context) (map[string]int64, error) {
	type result struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("invoices").
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Status] = r.Count
	}

	return m, nil
}

// GetOutstandingReceivables returns the total unpaid invoice amount including
// accrued penalties.
func (p *GormReceivablesMetricsProvider) GetOutstandingReceivables(ctx context.Context) (decimal.Decimal, error) {
	type result struct {
		Total decimal.Decimal `gorm:"column:total"`
	}

	var r result
	err := p.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(amount + penalty), 0) as total").
		Where("status IN ?", []string{"PENDING", "OVERDUE"}).
		Take(&r).Error

	if err != nil {
		return decimal.Zero, err
	}

	return r.Total, nil
}
