package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new invoice is issued
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoice_id"`
	ResponsibleID  uuid.UUID `json:"responsible_id"`
	ReferenceMonth string    `json:"reference_month"`
	DueDate        time.Time `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		ResponsibleID:   inv.ResponsibleID,
		ReferenceMonth:  inv.ReferenceMonth,
		DueDate:         inv.DueDate,
	}
}

// InvoicePaidEvent is raised when the settling payment is recorded
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Penalty     decimal.Decimal `json:"penalty"`
	PaymentDate time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, payment *Payment) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		PaymentID:       payment.ID,
		Amount:          inv.Amount,
		AmountPaid:      payment.AmountPaid,
		Penalty:         inv.Penalty,
		PaymentDate:     payment.PaymentDate,
	}
}

// InvoiceOverdueEvent is raised when a pending invoice passes its due date
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	ResponsibleID uuid.UUID       `json:"responsible_id"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceOverdueEvent) EventType() string {
	return "InvoiceOverdue"
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceOverdue", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		ResponsibleID:   inv.ResponsibleID,
		Amount:          inv.Amount,
		DueDate:         inv.DueDate,
	}
}

// InvoiceCancelledEvent is raised when an unpaid invoice is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		Reason:          reason,
	}
}
