package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountCreatedEvent is raised when a new ledger account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID   `json:"account_id"`
	Name          string      `json:"name"`
	Type          AccountType `json:"account_type"`
	ResponsibleID *uuid.UUID  `json:"responsible_id,omitempty"`
}

// EventType returns the event type name
func (e *AccountCreatedEvent) EventType() string {
	return "LedgerAccountCreated"
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerAccountCreated", "Account", account.ID),
		AccountID:       account.ID,
		Name:            account.Name,
		Type:            account.Type,
		ResponsibleID:   account.ResponsibleID,
	}
}

// TransactionPostedEvent is raised after a balanced entry pair is written
type TransactionPostedEvent struct {
	shared.BaseDomainEvent
	DebitAccountID  uuid.UUID       `json:"debit_account_id"`
	CreditAccountID uuid.UUID       `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	Type            EntryType       `json:"entry_type"`
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	PaymentID       *uuid.UUID      `json:"payment_id,omitempty"`
}

// EventType returns the event type name
func (e *TransactionPostedEvent) EventType() string {
	return "LedgerTransactionPosted"
}

// NewTransactionPostedEvent creates a new TransactionPostedEvent from the entry pair
func NewTransactionPostedEvent(pair EntryPair) *TransactionPostedEvent {
	return &TransactionPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerTransactionPosted", "LedgerEntry", pair.Debit.ID),
		DebitAccountID:  pair.Debit.AccountID,
		CreditAccountID: pair.Credit.AccountID,
		Amount:          pair.Debit.DebitAmount,
		TransactionDate: pair.Debit.TransactionDate,
		Type:            pair.Debit.Type,
		InvoiceID:       pair.Debit.InvoiceID,
		PaymentID:       pair.Debit.PaymentID,
	}
}
