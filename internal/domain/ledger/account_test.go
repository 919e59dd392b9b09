package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountType_IsValid(t *testing.T) {
	tests := []struct {
		accountType AccountType
		isValid     bool
	}{
		{AccountTypeAsset, true},
		{AccountTypeLiability, true},
		{AccountTypeEquity, true},
		{AccountTypeRevenue, true},
		{AccountTypeExpense, true},
		{AccountType("INVALID"), false},
		{AccountType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.accountType.IsValid())
		})
	}
}

func TestAccountType_BalanceFrom(t *testing.T) {
	debits := decimal.RequireFromString("300.00")
	credits := decimal.RequireFromString("100.00")

	tests := []struct {
		accountType AccountType
		want        string
	}{
		{AccountTypeAsset, "200.00"},
		{AccountTypeExpense, "200.00"},
		{AccountTypeLiability, "-200.00"},
		{AccountTypeEquity, "-200.00"},
		{AccountTypeRevenue, "-200.00"},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			got := tt.accountType.BalanceFrom(debits, credits)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"want %s, got %s", tt.want, got)
		})
	}
}

func TestNewAccount(t *testing.T) {
	t.Run("creates account with zero balance", func(t *testing.T) {
		account, err := NewAccount("Receita de Mensalidades", AccountTypeRevenue, nil)

		require.NoError(t, err)
		assert.True(t, account.Balance.IsZero())
		assert.Nil(t, account.ResponsibleID)
		assert.Len(t, account.GetDomainEvents(), 1)
	})

	t.Run("creates receivable account for responsible", func(t *testing.T) {
		responsibleID := uuid.New()
		account, err := NewAccount(ReceivableAccountName("Maria Silva"), AccountTypeAsset, &responsibleID)

		require.NoError(t, err)
		assert.Equal(t, "Contas a Receber - Maria Silva", account.Name)
		assert.True(t, account.IsReceivable())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewAccount("  ", AccountTypeAsset, nil)
		assert.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewAccount("Caixa", AccountType("BOGUS"), nil)
		assert.Error(t, err)
	})
}

func TestAccount_RefreshBalance(t *testing.T) {
	account, err := NewAccount("Caixa", AccountTypeAsset, nil)
	require.NoError(t, err)

	t.Run("updates and bumps version when value changes", func(t *testing.T) {
		versionBefore := account.Version

		changed := account.RefreshBalance(decimal.RequireFromString("150.00"))

		assert.True(t, changed)
		assert.True(t, account.Balance.Equal(decimal.RequireFromString("150.00")))
		assert.Equal(t, versionBefore+1, account.Version)
	})

	t.Run("no-op when value is unchanged", func(t *testing.T) {
		versionBefore := account.Version

		changed := account.RefreshBalance(decimal.RequireFromString("150.00"))

		assert.False(t, changed)
		assert.Equal(t, versionBefore, account.Version)
	})
}
