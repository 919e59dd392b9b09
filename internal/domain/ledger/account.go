package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AccountType classifies an account within the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is a valid AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// IsDebitNormal returns true for account types whose balance grows with debits.
// ASSET and EXPENSE accounts are debit-normal; LIABILITY, EQUITY and REVENUE
// accounts are credit-normal.
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// BalanceFrom derives the account balance from total debits and credits
// according to the account type's normal side.
func (t AccountType) BalanceFrom(debits, credits decimal.Decimal) decimal.Decimal {
	if t.IsDebitNormal() {
		return debits.Sub(credits)
	}
	return credits.Sub(debits)
}

// Account is a named ledger account.
//
// Balance is a cached projection of the account's ledger entries, refreshed by
// the posting service inside the same transaction that writes the entries. The
// authoritative value is always the sum computed by the balance reader.
type Account struct {
	shared.BaseAggregateRoot
	Name          string          `json:"name"`
	Type          AccountType     `json:"type"`
	ResponsibleID *uuid.UUID      `json:"responsible_id,omitempty"` // set only on per-responsible receivable accounts
	Balance       decimal.Decimal `json:"balance"`
}

// NewAccount creates a new account with a zero balance
func NewAccount(name string, accountType AccountType, responsibleID *uuid.UUID) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot exceed 200 characters")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", fmt.Sprintf("Account type %q is not valid", string(accountType)))
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              accountType,
		ResponsibleID:     responsibleID,
		Balance:           decimal.Zero,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// RefreshBalance replaces the cached balance with a freshly computed value.
// Returns true when the stored value actually changed.
func (a *Account) RefreshBalance(balance decimal.Decimal) bool {
	if a.Balance.Equal(balance) {
		return false
	}
	a.Balance = balance
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return true
}

// GetBalanceMoney returns the cached balance as Money
func (a *Account) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(a.Balance)
}

// IsReceivable returns true if this is a per-responsible receivable account
func (a *Account) IsReceivable() bool {
	return a.Type == AccountTypeAsset && a.ResponsibleID != nil
}

// ReceivableAccountName builds the deterministic name of the receivable
// account for a responsible party's display name.
func ReceivableAccountName(responsibleName string) string {
	return "Contas a Receber - " + responsibleName
}
