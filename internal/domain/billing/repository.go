package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	ResponsibleID  *uuid.UUID
	Status         *InvoiceStatus
	ReferenceMonth *string
	DueFrom        *time.Time
	DueTo          *time.Time
}

// InvoiceRepository defines the interface for invoice persistence.
// Implementations load and store the invoice together with its owned items,
// attached discounts and optional payment.
type InvoiceRepository interface {
	// FindByID loads an invoice with items, discounts and payment
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByResponsibleAndMonth finds the invoice issued to a responsible for
	// a reference month
	FindByResponsibleAndMonth(ctx context.Context, responsibleID uuid.UUID, referenceMonth string) (*Invoice, error)

	// FindAll finds invoices matching the filter
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindPendingPastDue finds pending invoices whose due date is before the
	// given moment, for overdue sweeps
	FindPendingPastDue(ctx context.Context, now time.Time) ([]Invoice, error)

	// Save creates or updates the invoice and its owned items
	Save(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice and cascades to its items
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByInvoice finds the payment settling an invoice, if any
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) (*Payment, error)

	// Create inserts a new payment. Returns shared.ErrAlreadyExists when the
	// invoice already has a payment (unique invoice constraint).
	Create(ctx context.Context, payment *Payment) error

	// Save updates an existing payment (status changes)
	Save(ctx context.Context, payment *Payment) error
}

// DiscountRepository defines the interface for discount persistence
type DiscountRepository interface {
	// FindByID finds a discount by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Discount, error)

	// FindActive returns discounts whose validity window is open at the given
	// moment
	FindActive(ctx context.Context, at time.Time) ([]Discount, error)

	// Save creates or updates a discount
	Save(ctx context.Context, discount *Discount) error
}
