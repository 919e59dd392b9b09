package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EntryType classifies the business event behind a ledger entry
type EntryType string

const (
	EntryTypeTuitionFee           EntryType = "TUITION_FEE"
	EntryTypeDiscountApplied      EntryType = "DISCOUNT_APPLIED"
	EntryTypePaymentReceived      EntryType = "PAYMENT_RECEIVED"
	EntryTypePenaltyAssessed      EntryType = "PENALTY_ASSESSED"
	EntryTypeRefundIssued         EntryType = "REFUND_ISSUED"
	EntryTypeGeneralJournal       EntryType = "GENERAL_JOURNAL"
	EntryTypeOpeningBalance       EntryType = "OPENING_BALANCE"
	EntryTypeEnrollmentFeeCharged EntryType = "ENROLLMENT_FEE_CHARGED"
	EntryTypeClosingEntry         EntryType = "CLOSING_ENTRY"
)

// IsValid checks if the entry type is a valid EntryType
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeTuitionFee, EntryTypeDiscountApplied, EntryTypePaymentReceived,
		EntryTypePenaltyAssessed, EntryTypeRefundIssued, EntryTypeGeneralJournal,
		EntryTypeOpeningBalance, EntryTypeEnrollmentFeeCharged, EntryTypeClosingEntry:
		return true
	}
	return false
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// LedgerEntry is one side of a double-entry posting. Entries are append-only:
// once created they are never updated or deleted.
//
// Exactly one of DebitAmount and CreditAmount is strictly positive; the other
// is exactly zero. Entries are only built through NewEntryPair, which enforces
// the invariant at construction time.
type LedgerEntry struct {
	shared.BaseEntity
	AccountID       uuid.UUID       `json:"account_id"`
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	PaymentID       *uuid.UUID      `json:"payment_id,omitempty"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description"`
	Type            EntryType       `json:"type"`
}

// EntryPair is the balanced debit/credit pair produced by a single posting.
// Total debits equal total credits across the two entries by construction.
type EntryPair struct {
	Debit  *LedgerEntry
	Credit *LedgerEntry
}

// Entries returns the pair as a slice, debit first
func (p EntryPair) Entries() []*LedgerEntry {
	return []*LedgerEntry{p.Debit, p.Credit}
}

// NewEntryPair builds the balanced pair of ledger entries for one posting.
// The debit entry carries the full amount on its debit side, the credit entry
// on its credit side; both share date, description, type and document links.
func NewEntryPair(
	debitAccountID, creditAccountID uuid.UUID,
	amount valueobject.Money,
	transactionDate time.Time,
	description string,
	entryType EntryType,
	invoiceID, paymentID *uuid.UUID,
) (EntryPair, error) {
	if debitAccountID == uuid.Nil {
		return EntryPair{}, shared.NewDomainError("INVALID_INPUT", "Debit account is required")
	}
	if creditAccountID == uuid.Nil {
		return EntryPair{}, shared.NewDomainError("INVALID_INPUT", "Credit account is required")
	}
	if debitAccountID == creditAccountID {
		return EntryPair{}, shared.NewDomainError("INVARIANT_VIOLATION", "Debit and credit accounts must differ")
	}
	if !amount.IsPositive() {
		return EntryPair{}, shared.NewDomainError("INVALID_INPUT", "Posting amount must be positive")
	}
	if transactionDate.IsZero() {
		return EntryPair{}, shared.NewDomainError("INVALID_INPUT", "Transaction date is required")
	}
	if strings.TrimSpace(description) == "" {
		return EntryPair{}, shared.NewDomainError("INVALID_INPUT", "Description cannot be blank")
	}
	if !entryType.IsValid() {
		return EntryPair{}, shared.NewDomainError("INVALID_INPUT", "Entry type is not valid")
	}

	debit := &LedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       debitAccountID,
		InvoiceID:       invoiceID,
		PaymentID:       paymentID,
		DebitAmount:     amount.Amount(),
		CreditAmount:    decimal.Zero,
		TransactionDate: transactionDate,
		Description:     description,
		Type:            entryType,
	}
	credit := &LedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       creditAccountID,
		InvoiceID:       invoiceID,
		PaymentID:       paymentID,
		DebitAmount:     decimal.Zero,
		CreditAmount:    amount.Amount(),
		TransactionDate: transactionDate,
		Description:     description,
		Type:            entryType,
	}

	return EntryPair{Debit: debit, Credit: credit}, nil
}

// Validate re-checks the single-sided invariant before persistence.
// An entry with both or neither side positive must never reach the ledger.
func (e *LedgerEntry) Validate() error {
	debitPositive := e.DebitAmount.IsPositive()
	creditPositive := e.CreditAmount.IsPositive()
	if debitPositive == creditPositive {
		return shared.NewDomainError("INVARIANT_VIOLATION", "Exactly one of debit and credit must be positive")
	}
	if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
		return shared.NewDomainError("INVARIANT_VIOLATION", "Entry amounts cannot be negative")
	}
	if e.AccountID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Entry must reference an account")
	}
	return nil
}

// IsDebit returns true if this entry carries the debit side
func (e *LedgerEntry) IsDebit() bool {
	return e.DebitAmount.IsPositive()
}

// IsCredit returns true if this entry carries the credit side
func (e *LedgerEntry) IsCredit() bool {
	return e.CreditAmount.IsPositive()
}

// GetAmountMoney returns the entry's single-sided amount as Money
func (e *LedgerEntry) GetAmountMoney() valueobject.Money {
	if e.IsDebit() {
		return valueobject.NewMoneyBRL(e.DebitAmount)
	}
	return valueobject.NewMoneyBRL(e.CreditAmount)
}
