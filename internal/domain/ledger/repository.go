package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountKey is the logical identity of an account: (type, responsible, name).
// ResponsibleID is nil for shared accounts (revenue, cash, ...), set for
// per-responsible receivable accounts. A unique database constraint on the key
// serializes concurrent find-or-create attempts.
type AccountKey struct {
	Type          AccountType
	ResponsibleID *uuid.UUID
	Name          string
}

// AccountFilter defines filtering options for account queries
type AccountFilter struct {
	shared.Filter
	Type          *AccountType
	ResponsibleID *uuid.UUID
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByKey finds an account by its logical key
	FindByKey(ctx context.Context, key AccountKey) (*Account, error)

	// FindAll finds accounts matching the filter
	FindAll(ctx context.Context, filter AccountFilter) ([]Account, error)

	// Create inserts a new account. Returns shared.ErrAlreadyExists when the
	// unique (type, responsible, name) constraint is violated, so callers can
	// recover a creation race by re-reading.
	Create(ctx context.Context, account *Account) error

	// Save updates an existing account (balance refresh)
	Save(ctx context.Context, account *Account) error
}

// EntrySums carries the total debits and credits over a set of entries
type EntrySums struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// LedgerEntryFilter defines filtering options for entry queries
type LedgerEntryFilter struct {
	shared.Filter
	AccountID *uuid.UUID
	InvoiceID *uuid.UUID
	PaymentID *uuid.UUID
	Type      *EntryType
	FromDate  *time.Time
	ToDate    *time.Time
}

// LedgerEntryRepository defines the interface for the append-only ledger.
// Entries are created and read; there is no update or delete.
type LedgerEntryRepository interface {
	// Create appends entries to the ledger
	Create(ctx context.Context, entries ...*LedgerEntry) error

	// FindByID finds a ledger entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByAccount returns all entries referencing the account, oldest first
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]LedgerEntry, error)

	// FindByInvoice returns all entries tagged with the invoice, oldest first
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]LedgerEntry, error)

	// FindAll finds entries matching the filter
	FindAll(ctx context.Context, filter LedgerEntryFilter) ([]LedgerEntry, error)

	// SumByAccount totals debit and credit amounts over all entries of the account
	SumByAccount(ctx context.Context, accountID uuid.UUID) (EntrySums, error)

	// SumByAccountForInvoice totals debit and credit amounts over the account's
	// entries tagged with the given invoice
	SumByAccountForInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (EntrySums, error)

	// SumByTypesForInvoice totals debit and credit amounts over the invoice's
	// entries of the given types, across all accounts
	SumByTypesForInvoice(ctx context.Context, invoiceID uuid.UUID, types ...EntryType) (EntrySums, error)
}

// TxRepositories bundles the repositories bound to one database transaction
type TxRepositories struct {
	Accounts AccountRepository
	Entries  LedgerEntryRepository
}

// UnitOfWork runs a function against transaction-bound repositories. The
// function's writes are committed atomically; any error rolls back everything.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos TxRepositories) error) error
}
