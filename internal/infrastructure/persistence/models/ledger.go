package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account domain entity.
//
// ResponsibleID stores uuid.Nil for shared accounts instead of NULL so the
// unique index over (type, responsible_id, name) also serializes concurrent
// creation of shared accounts. Postgres treats NULLs as distinct in unique
// indexes, which would defeat the find-or-create race recovery.
type AccountModel struct {
	AggregateModel
	Name          string             `gorm:"type:varchar(200);not null;uniqueIndex:idx_account_key,priority:3"`
	Type          ledger.AccountType `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_key,priority:1"`
	ResponsibleID uuid.UUID          `gorm:"type:uuid;not null;default:'00000000-0000-0000-0000-000000000000';uniqueIndex:idx_account_key,priority:2;index"`
	Balance       decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *ledger.Account {
	var responsibleID *uuid.UUID
	if m.ResponsibleID != uuid.Nil {
		id := m.ResponsibleID
		responsibleID = &id
	}
	return &ledger.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Type:              m.Type,
		ResponsibleID:     responsibleID,
		Balance:           m.Balance,
	}
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Name = a.Name
	m.Type = a.Type
	m.ResponsibleID = ResponsibleColumn(a.ResponsibleID)
	m.Balance = a.Balance
}

// AccountModelFromDomain creates a new persistence model from a domain Account entity.
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// ResponsibleColumn maps an optional responsible reference to its stored
// form: uuid.Nil marks a shared account.
func ResponsibleColumn(responsibleID *uuid.UUID) uuid.UUID {
	if responsibleID == nil {
		return uuid.Nil
	}
	return *responsibleID
}

// LedgerEntryModel is the persistence model for the LedgerEntry domain entity.
// The ledger is append-only: rows are inserted and read, never updated.
type LedgerEntryModel struct {
	BaseModel
	AccountID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	InvoiceID       *uuid.UUID       `gorm:"type:uuid;index"`
	PaymentID       *uuid.UUID       `gorm:"type:uuid;index"`
	DebitAmount     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CreditAmount    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TransactionDate time.Time        `gorm:"not null;index"`
	Description     string           `gorm:"type:varchar(500);not null"`
	Type            ledger.EntryType `gorm:"type:varchar(30);not null;index"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry entity.
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	return &ledger.LedgerEntry{
		BaseEntity:      m.BaseModel.ToDomain(),
		AccountID:       m.AccountID,
		InvoiceID:       m.InvoiceID,
		PaymentID:       m.PaymentID,
		DebitAmount:     m.DebitAmount,
		CreditAmount:    m.CreditAmount,
		TransactionDate: m.TransactionDate,
		Description:     m.Description,
		Type:            m.Type,
	}
}

// FromDomain populates the persistence model from a domain LedgerEntry entity.
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.AccountID = e.AccountID
	m.InvoiceID = e.InvoiceID
	m.PaymentID = e.PaymentID
	m.DebitAmount = e.DebitAmount
	m.CreditAmount = e.CreditAmount
	m.TransactionDate = e.TransactionDate
	m.Description = e.Description
	m.Type = e.Type
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry entity.
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}
