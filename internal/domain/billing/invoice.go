package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// ItemType classifies an invoice line item
type ItemType string

const (
	ItemTypeMatricula   ItemType = "MATRICULA"   // enrollment fee
	ItemTypeMensalidade ItemType = "MENSALIDADE" // monthly tuition
	ItemTypeDesconto    ItemType = "DESCONTO"    // itemized discount (negative amount)
	ItemTypeTaxa        ItemType = "TAXA"        // ad-hoc fee
)

// IsValid checks if the item type is a valid ItemType
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeMatricula, ItemTypeMensalidade, ItemTypeDesconto, ItemTypeTaxa:
		return true
	}
	return false
}

// InvoiceItem is a line item owned by an Invoice. Amount is signed: positive
// for charges, negative for itemized discounts.
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Type         ItemType        `json:"type"`
	EnrollmentID *uuid.UUID      `json:"enrollment_id,omitempty"`
}

// NewInvoiceItem creates a new invoice item
func NewInvoiceItem(invoiceID uuid.UUID, description string, amount decimal.Decimal, itemType ItemType, enrollmentID *uuid.UUID) (*InvoiceItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", fmt.Sprintf("Item type %q is not valid", string(itemType)))
	}
	return &InvoiceItem{
		BaseEntity:   shared.NewBaseEntity(),
		InvoiceID:    invoiceID,
		Description:  description,
		Amount:       amount,
		Type:         itemType,
		EnrollmentID: enrollmentID,
	}, nil
}

// Invoice is the monthly tuition invoice aggregate root. It exclusively owns
// its items; discounts are referenced by value for total computation.
//
// Amount is recomputed through RecalculateAmount before every persist; it is
// never written without passing through the calculator.
type Invoice struct {
	shared.BaseAggregateRoot
	ResponsibleID  uuid.UUID       `json:"responsible_id"`
	Items          []InvoiceItem   `json:"items"`
	Discounts      []Discount      `json:"discounts"`
	Amount         decimal.Decimal `json:"amount"`
	Penalty        decimal.Decimal `json:"penalty"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	ReferenceMonth string          `json:"reference_month"` // YYYY-MM
	Status         InvoiceStatus   `json:"status"`
	Payment        *Payment        `json:"payment,omitempty"`
}

// NewInvoice creates a new pending invoice with no items
func NewInvoice(responsibleID uuid.UUID, issueDate, dueDate time.Time, referenceMonth string) (*Invoice, error) {
	if responsibleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESPONSIBLE", "Responsible ID cannot be empty")
	}
	if issueDate.IsZero() || dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Issue and due dates are required")
	}
	if !referenceMonthValid(referenceMonth) {
		return nil, shared.NewDomainError("INVALID_REFERENCE_MONTH", "Reference month must be in YYYY-MM format")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ResponsibleID:     responsibleID,
		Items:             []InvoiceItem{},
		Discounts:         []Discount{},
		Amount:            decimal.Zero,
		Penalty:           decimal.Zero,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		ReferenceMonth:    referenceMonth,
		Status:            InvoiceStatusPending,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

func referenceMonthValid(ref string) bool {
	_, err := time.Parse("2006-01", ref)
	return err == nil
}

// AddItem appends a line item to the invoice
func (i *Invoice) AddItem(description string, amount decimal.Decimal, itemType ItemType, enrollmentID *uuid.UUID) (*InvoiceItem, error) {
	if i.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to invoice in %s status", i.Status))
	}
	item, err := NewInvoiceItem(i.ID, description, amount, itemType, enrollmentID)
	if err != nil {
		return nil, err
	}
	i.Items = append(i.Items, *item)
	i.touch()
	return item, nil
}

// ApplyDiscount attaches a discount to the invoice. Whether it contributes to
// the total depends on the item types present at computation time.
func (i *Invoice) ApplyDiscount(discount Discount) error {
	if i.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply discounts to invoice in %s status", i.Status))
	}
	for _, d := range i.Discounts {
		if d.ID == discount.ID {
			return shared.NewDomainError("ALREADY_EXISTS", "Discount already applied to this invoice")
		}
	}
	i.Discounts = append(i.Discounts, discount)
	i.touch()
	return nil
}

// RecordPayment links the settling payment and transitions the invoice to
// PAID. A late payment assesses the flat penalty before the final total is
// computed. penaltyPolicy is the flat amount assessed on late payments.
func (i *Invoice) RecordPayment(payment *Payment, penaltyPolicy decimal.Decimal) error {
	if payment == nil {
		return shared.NewDomainError("INVALID_INPUT", "Payment is required")
	}
	if i.Payment != nil {
		return shared.NewDomainError("ALREADY_EXISTS", "Invoice already has a payment")
	}
	if i.Status != InvoiceStatusPending && i.Status != InvoiceStatusOverdue {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on invoice in %s status", i.Status))
	}

	i.Payment = payment
	if PaymentIsLate(payment, i.DueDate) {
		i.Penalty = penaltyPolicy
	}
	i.RecalculateAmount()
	i.Status = InvoiceStatusPaid
	i.touch()

	i.AddDomainEvent(NewInvoicePaidEvent(i, payment))

	return nil
}

// MarkOverdue transitions a pending invoice past its due date to OVERDUE
func (i *Invoice) MarkOverdue(now time.Time) error {
	if i.Status != InvoiceStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice in %s status as overdue", i.Status))
	}
	if !StartOfDay(now).After(StartOfDay(i.DueDate)) {
		return shared.NewDomainError("INVALID_STATE", "Invoice is not past its due date")
	}
	i.Status = InvoiceStatusOverdue
	i.touch()

	i.AddDomainEvent(NewInvoiceOverdueEvent(i))

	return nil
}

// Cancel voids an unpaid invoice
func (i *Invoice) Cancel(reason string) error {
	if i.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", i.Status))
	}
	if i.Payment != nil {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel an invoice with a recorded payment")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Cancel reason is required")
	}
	i.Status = InvoiceStatusCancelled
	i.touch()

	i.AddDomainEvent(NewInvoiceCancelledEvent(i, reason))

	return nil
}

// RecalculateAmount recomputes the cached total from the invoice's current
// items, discounts and payment. Every mutation path calls this before the
// invoice is persisted.
func (i *Invoice) RecalculateAmount() {
	i.Amount = ComputeTotal(i.Items, i.Discounts, i.Payment, i.DueDate, i.Penalty)
}

// GetAmountMoney returns the computed total as Money
func (i *Invoice) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(i.Amount)
}

// HasItemOfType reports whether any line item carries the given type
func (i *Invoice) HasItemOfType(itemType ItemType) bool {
	return hasItemOfType(i.Items, itemType)
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// ComputeTotal derives an invoice total from its parts.
//
// The gross total is the signed sum of item amounts. Each attached discount
// contributes its full value once when at least one item of its type is
// present; the accumulated discount is a flat sum, deliberately not
// proportional to the matching items. A payment strictly after the due date
// (compared at start of day) adds the flat penalty. The result never goes
// below zero.
func ComputeTotal(items []InvoiceItem, discounts []Discount, payment *Payment, dueDate time.Time, penalty decimal.Decimal) decimal.Decimal {
	grossTotal := decimal.Zero
	for _, item := range items {
		grossTotal = grossTotal.Add(item.Amount)
	}

	discountTotal := decimal.Zero
	for _, d := range discounts {
		if hasItemOfType(items, d.AppliesTo) {
			discountTotal = discountTotal.Add(d.Value)
		}
	}
	if discountTotal.IsNegative() {
		discountTotal = decimal.Zero
	}

	total := grossTotal.Sub(discountTotal)

	if PaymentIsLate(payment, dueDate) {
		total = total.Add(penalty)
	}

	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func hasItemOfType(items []InvoiceItem, itemType ItemType) bool {
	for _, item := range items {
		if item.Type == itemType {
			return true
		}
	}
	return false
}

// PaymentIsLate reports whether the payment date falls strictly after the due
// date. Both sides are compared at start of day: a payment on the due date
// itself is on time.
func PaymentIsLate(payment *Payment, dueDate time.Time) bool {
	if payment == nil {
		return false
	}
	return StartOfDay(payment.PaymentDate).After(StartOfDay(dueDate))
}

// StartOfDay truncates a timestamp to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
