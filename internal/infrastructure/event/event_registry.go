package event

import (
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/ledger"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Billing domain - Invoice events
	serializer.Register("InvoiceCreated", &billing.InvoiceCreatedEvent{})
	serializer.Register("InvoicePaid", &billing.InvoicePaidEvent{})
	serializer.Register("InvoiceOverdue", &billing.InvoiceOverdueEvent{})
	serializer.Register("InvoiceCancelled", &billing.InvoiceCancelledEvent{})

	// Ledger domain events
	serializer.Register("LedgerAccountCreated", &ledger.AccountCreatedEvent{})
	serializer.Register("LedgerTransactionPosted", &ledger.TransactionPostedEvent{})
}
