package billing

import (
	"context"

	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FinancialAuditHandler writes an audit log line for every financial domain
// event that flows through the outbox. The structured fields carry enough
// detail to reconstruct the event without the database.
type FinancialAuditHandler struct {
	logger *zap.Logger
}

// NewFinancialAuditHandler creates a new audit handler
func NewFinancialAuditHandler(logger *zap.Logger) *FinancialAuditHandler {
	return &FinancialAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *FinancialAuditHandler) EventTypes() []string {
	return []string{
		"InvoiceCreated",
		"InvoicePaid",
		"InvoiceOverdue",
		"InvoiceCancelled",
		"LedgerAccountCreated",
		"LedgerTransactionPosted",
	}
}

// Handle logs the event. Audit logging never fails the dispatch.
func (h *FinancialAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *billing.InvoiceCreatedEvent:
		fields = append(fields,
			zap.String("responsible_id", e.ResponsibleID.String()),
			zap.String("reference_month", e.ReferenceMonth),
			zap.Time("due_date", e.DueDate),
		)
	case *billing.InvoicePaidEvent:
		fields = append(fields,
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("amount_paid", e.AmountPaid.StringFixed(2)),
			zap.String("penalty", e.Penalty.StringFixed(2)),
			zap.Time("payment_date", e.PaymentDate),
		)
	case *billing.InvoiceOverdueEvent:
		fields = append(fields,
			zap.String("responsible_id", e.ResponsibleID.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.Time("due_date", e.DueDate),
		)
	case *billing.InvoiceCancelledEvent:
		fields = append(fields, zap.String("reason", e.Reason))
	case *ledger.AccountCreatedEvent:
		fields = append(fields,
			zap.String("account_name", e.Name),
			zap.String("account_type", string(e.Type)),
		)
	case *ledger.TransactionPostedEvent:
		fields = append(fields,
			zap.String("debit_account_id", e.DebitAccountID.String()),
			zap.String("credit_account_id", e.CreditAccountID.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("entry_type", string(e.Type)),
		)
	}

	h.logger.Info("audit: "+event.EventType(), fields...)
	return nil
}
