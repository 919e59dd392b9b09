package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate. Items are
// owned child rows; discounts are attached through the invoice_discounts join
// table; the payment row, if any, is written by the payment repository and
// only read here.
type InvoiceModel struct {
	AggregateModel
	ResponsibleID  uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoice_responsible_month,priority:1"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Penalty        decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	IssueDate      time.Time             `gorm:"not null"`
	DueDate        time.Time             `gorm:"not null;index"`
	ReferenceMonth string                `gorm:"type:varchar(7);not null;uniqueIndex:idx_invoice_responsible_month,priority:2"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	Items          []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Discounts      []DiscountModel       `gorm:"many2many:invoice_discounts"`
	Payment        *PaymentModel         `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	items := make([]billing.InvoiceItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = *item.ToDomain()
	}
	discounts := make([]billing.Discount, len(m.Discounts))
	for i, discount := range m.Discounts {
		discounts[i] = *discount.ToDomain()
	}
	var payment *billing.Payment
	if m.Payment != nil {
		payment = m.Payment.ToDomain()
	}
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ResponsibleID:     m.ResponsibleID,
		Items:             items,
		Discounts:         discounts,
		Amount:            m.Amount,
		Penalty:           m.Penalty,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		ReferenceMonth:    m.ReferenceMonth,
		Status:            m.Status,
		Payment:           payment,
	}
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
// The owned items are mapped; discounts and payment rows are managed by their
// own repositories and association handling in the invoice repository.
func (m *InvoiceModel) FromDomain(i *billing.Invoice) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.ResponsibleID = i.ResponsibleID
	m.Amount = i.Amount
	m.Penalty = i.Penalty
	m.IssueDate = i.IssueDate
	m.DueDate = i.DueDate
	m.ReferenceMonth = i.ReferenceMonth
	m.Status = i.Status
	m.Items = make([]InvoiceItemModel, len(i.Items))
	for idx := range i.Items {
		m.Items[idx].FromDomain(&i.Items[idx])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(i *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(i)
	return m
}

// InvoiceItemModel is the persistence model for the InvoiceItem domain entity.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Description  string           `gorm:"type:varchar(500);not null"`
	Amount       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Type         billing.ItemType `gorm:"type:varchar(20);not null"`
	EnrollmentID *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		BaseEntity:   m.BaseModel.ToDomain(),
		InvoiceID:    m.InvoiceID,
		Description:  m.Description,
		Amount:       m.Amount,
		Type:         m.Type,
		EnrollmentID: m.EnrollmentID,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem entity.
func (m *InvoiceItemModel) FromDomain(i *billing.InvoiceItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.InvoiceID = i.InvoiceID
	m.Description = i.Description
	m.Amount = i.Amount
	m.Type = i.Type
	m.EnrollmentID = i.EnrollmentID
}

// DiscountModel is the persistence model for the Discount domain entity.
type DiscountModel struct {
	BaseModel
	Name        string           `gorm:"type:varchar(200);not null"`
	Description string           `gorm:"type:varchar(500)"`
	Value       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ValidUntil  *time.Time       `gorm:"index"`
	AppliesTo   billing.ItemType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (DiscountModel) TableName() string {
	return "discounts"
}

// ToDomain converts the persistence model to a domain Discount entity.
func (m *DiscountModel) ToDomain() *billing.Discount {
	return &billing.Discount{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		Value:       m.Value,
		ValidUntil:  m.ValidUntil,
		AppliesTo:   m.AppliesTo,
	}
}

// FromDomain populates the persistence model from a domain Discount entity.
func (m *DiscountModel) FromDomain(d *billing.Discount) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.Name = d.Name
	m.Description = d.Description
	m.Value = d.Value
	m.ValidUntil = d.ValidUntil
	m.AppliesTo = d.AppliesTo
}

// DiscountModelFromDomain creates a new persistence model from a domain Discount entity.
func DiscountModelFromDomain(d *billing.Discount) *DiscountModel {
	m := &DiscountModel{}
	m.FromDomain(d)
	return m
}

// PaymentModel is the persistence model for the Payment domain entity.
// The unique index on InvoiceID enforces one payment per invoice; the
// repository maps the violation to shared.ErrAlreadyExists.
type PaymentModel struct {
	BaseModel
	InvoiceID   uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	AmountPaid  decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate time.Time             `gorm:"not null"`
	Status      billing.PaymentStatus `gorm:"type:varchar(20);not null"`
	Method      billing.PaymentMethod `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		AmountPaid:  m.AmountPaid,
		PaymentDate: m.PaymentDate,
		Status:      m.Status,
		Method:      m.Method,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.InvoiceID = p.InvoiceID
	m.AmountPaid = p.AmountPaid
	m.PaymentDate = p.PaymentDate
	m.Status = p.Status
	m.Method = p.Method
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
