package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the state of a recorded payment
type PaymentStatus string

const (
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusReversed  PaymentStatus = "REVERSED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusConfirmed || s == PaymentStatusReversed
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodPix    PaymentMethod = "PIX"
	PaymentMethodBoleto PaymentMethod = "BOLETO"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodCash   PaymentMethod = "CASH"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodBoleto, PaymentMethodCard, PaymentMethodCash:
		return true
	}
	return false
}

// Payment settles exactly one invoice. At most one payment exists per invoice,
// enforced by a unique constraint on InvoiceID.
type Payment struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	PaymentDate time.Time       `json:"payment_date"`
	Status      PaymentStatus   `json:"status"`
	Method      PaymentMethod   `json:"method"`
}

// NewPayment creates a confirmed payment against an invoice
func NewPayment(invoiceID uuid.UUID, amountPaid decimal.Decimal, paymentDate time.Time, method PaymentMethod) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Payment must reference an invoice")
	}
	if !amountPaid.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Payment method %q is not valid", string(method)))
	}
	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		AmountPaid:  amountPaid,
		PaymentDate: paymentDate,
		Status:      PaymentStatusConfirmed,
		Method:      method,
	}, nil
}

// GetAmountPaidMoney returns the paid amount as Money
func (p *Payment) GetAmountPaidMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(p.AmountPaid)
}

// Reverse marks the payment as reversed
func (p *Payment) Reverse() error {
	if p.Status == PaymentStatusReversed {
		return shared.NewDomainError("INVALID_STATE", "Payment is already reversed")
	}
	p.Status = PaymentStatusReversed
	p.UpdatedAt = time.Now()
	return nil
}
