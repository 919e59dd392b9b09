package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryType_IsValid(t *testing.T) {
	valid := []EntryType{
		EntryTypeTuitionFee, EntryTypeDiscountApplied, EntryTypePaymentReceived,
		EntryTypePenaltyAssessed, EntryTypeRefundIssued, EntryTypeGeneralJournal,
		EntryTypeOpeningBalance, EntryTypeEnrollmentFeeCharged, EntryTypeClosingEntry,
	}
	for _, et := range valid {
		t.Run(string(et), func(t *testing.T) {
			assert.True(t, et.IsValid())
		})
	}

	assert.False(t, EntryType("UNKNOWN").IsValid())
	assert.False(t, EntryType("").IsValid())
}

func TestNewEntryPair(t *testing.T) {
	debitAccount := uuid.New()
	creditAccount := uuid.New()
	amount := valueobject.NewMoneyBRLFromFloat(150.00)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("builds a balanced pair", func(t *testing.T) {
		pair, err := NewEntryPair(debitAccount, creditAccount, amount, date, "Mensalidade 2026-03", EntryTypeTuitionFee, nil, nil)
		require.NoError(t, err)

		assert.True(t, pair.Debit.DebitAmount.Equal(amount.Amount()))
		assert.True(t, pair.Debit.CreditAmount.IsZero())
		assert.True(t, pair.Credit.CreditAmount.Equal(amount.Amount()))
		assert.True(t, pair.Credit.DebitAmount.IsZero())

		// total debits == total credits == amount across the pair
		totalDebits := pair.Debit.DebitAmount.Add(pair.Credit.DebitAmount)
		totalCredits := pair.Debit.CreditAmount.Add(pair.Credit.CreditAmount)
		assert.True(t, totalDebits.Equal(totalCredits))
		assert.True(t, totalDebits.Equal(amount.Amount()))
	})

	t.Run("both entries share date, description and type", func(t *testing.T) {
		invoiceID := uuid.New()
		paymentID := uuid.New()
		pair, err := NewEntryPair(debitAccount, creditAccount, amount, date, "Pagamento recebido", EntryTypePaymentReceived, &invoiceID, &paymentID)
		require.NoError(t, err)

		for _, e := range pair.Entries() {
			assert.Equal(t, date, e.TransactionDate)
			assert.Equal(t, "Pagamento recebido", e.Description)
			assert.Equal(t, EntryTypePaymentReceived, e.Type)
			assert.Equal(t, &invoiceID, e.InvoiceID)
			assert.Equal(t, &paymentID, e.PaymentID)
			require.NoError(t, e.Validate())
		}
	})

	t.Run("rejects same account on both sides", func(t *testing.T) {
		_, err := NewEntryPair(debitAccount, debitAccount, amount, date, "broken", EntryTypeGeneralJournal, nil, nil)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVARIANT_VIOLATION", domainErr.Code)
	})

	tests := []struct {
		name        string
		debit       uuid.UUID
		credit      uuid.UUID
		amount      valueobject.Money
		date        time.Time
		description string
		entryType   EntryType
	}{
		{"nil debit account", uuid.Nil, creditAccount, amount, date, "x", EntryTypeGeneralJournal},
		{"nil credit account", debitAccount, uuid.Nil, amount, date, "x", EntryTypeGeneralJournal},
		{"zero amount", debitAccount, creditAccount, valueobject.ZeroBRL(), date, "x", EntryTypeGeneralJournal},
		{"negative amount", debitAccount, creditAccount, valueobject.NewMoneyBRLFromFloat(-5), date, "x", EntryTypeGeneralJournal},
		{"zero date", debitAccount, creditAccount, amount, time.Time{}, "x", EntryTypeGeneralJournal},
		{"blank description", debitAccount, creditAccount, amount, date, "   ", EntryTypeGeneralJournal},
		{"invalid entry type", debitAccount, creditAccount, amount, date, "x", EntryType("BOGUS")},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewEntryPair(tt.debit, tt.credit, tt.amount, tt.date, tt.description, tt.entryType, nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestLedgerEntry_Validate(t *testing.T) {
	base := func() *LedgerEntry {
		return &LedgerEntry{
			BaseEntity:      shared.NewBaseEntity(),
			AccountID:       uuid.New(),
			TransactionDate: time.Now(),
			Description:     "test",
			Type:            EntryTypeGeneralJournal,
		}
	}

	t.Run("accepts single-sided debit", func(t *testing.T) {
		e := base()
		e.DebitAmount = decimal.RequireFromString("10.00")
		e.CreditAmount = decimal.Zero
		assert.NoError(t, e.Validate())
	})

	t.Run("rejects both sides positive", func(t *testing.T) {
		e := base()
		e.DebitAmount = decimal.RequireFromString("10.00")
		e.CreditAmount = decimal.RequireFromString("10.00")
		assert.Error(t, e.Validate())
	})

	t.Run("rejects both sides zero", func(t *testing.T) {
		e := base()
		e.DebitAmount = decimal.Zero
		e.CreditAmount = decimal.Zero
		assert.Error(t, e.Validate())
	})

	t.Run("rejects negative side", func(t *testing.T) {
		e := base()
		e.DebitAmount = decimal.RequireFromString("-10.00")
		e.CreditAmount = decimal.RequireFromString("10.00")
		assert.Error(t, e.Validate())
	})
}
