package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReaderFixture() (*MockAccountRepository, *MockLedgerEntryRepository, *MockInvoiceRepository, *BalanceReaderService) {
	mockAccounts := new(MockAccountRepository)
	mockEntries := new(MockLedgerEntryRepository)
	mockInvoices := new(MockInvoiceRepository)
	service := NewBalanceReaderService(mockAccounts, mockEntries, mockInvoices, zap.NewNop())
	return mockAccounts, mockEntries, mockInvoices, service
}

func createTestInvoice(t *testing.T) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice(
		newTestResponsibleID(),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		"2025-03",
	)
	require.NoError(t, err)
	return invoice
}

func TestBalanceReaderService_GetAccountBalance_DebitNormal(t *testing.T) {
	mockAccounts, mockEntries, _, service := newReaderFixture()

	ctx := context.Background()
	account := createTestAccount("Contas a Receber - Maria Souza", ledger.AccountTypeAsset, nil)

	mockAccounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	mockEntries.On("SumByAccount", mock.Anything, account.ID).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(1000), Credits: decimal.NewFromInt(300)}, nil)

	balance, err := service.GetAccountBalance(ctx, account.ID)

	assert.NoError(t, err)
	assert.True(t, balance.Amount().Equal(decimal.NewFromInt(700)))
}

func TestBalanceReaderService_GetAccountBalance_CreditNormal(t *testing.T) {
	mockAccounts, mockEntries, _, service := newReaderFixture()

	ctx := context.Background()
	account := createTestAccount("Receita de Mensalidades", ledger.AccountTypeRevenue, nil)

	mockAccounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	mockEntries.On("SumByAccount", mock.Anything, account.ID).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(100), Credits: decimal.NewFromInt(900)}, nil)

	balance, err := service.GetAccountBalance(ctx, account.ID)

	assert.NoError(t, err)
	assert.True(t, balance.Amount().Equal(decimal.NewFromInt(800)))
}

func TestBalanceReaderService_GetAccountBalance_UnknownAccount(t *testing.T) {
	mockAccounts, mockEntries, _, service := newReaderFixture()

	ctx := context.Background()
	accountID := uuid.New()

	mockAccounts.On("FindByID", mock.Anything, accountID).Return(nil, shared.ErrNotFound)

	_, err := service.GetAccountBalance(ctx, accountID)

	assert.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	mockEntries.AssertNotCalled(t, "SumByAccount", mock.Anything, mock.Anything)
}

func TestBalanceReaderService_UpdateAccountBalance_WritesChangedProjection(t *testing.T) {
	mockAccounts, mockEntries, _, service := newReaderFixture()

	ctx := context.Background()
	account := createTestAccount("Caixa", ledger.AccountTypeAsset, nil)
	versionBefore := account.Version

	mockAccounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	mockEntries.On("SumByAccount", mock.Anything, account.ID).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(500), Credits: decimal.NewFromInt(120)}, nil)
	mockAccounts.On("Save", mock.Anything, account).Return(nil)

	err := service.UpdateAccountBalance(ctx, account.ID)

	assert.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(380)))
	assert.Equal(t, versionBefore+1, account.Version)
	mockAccounts.AssertExpectations(t)
}

func TestBalanceReaderService_UpdateAccountBalance_SkipsUnchangedProjection(t *testing.T) {
	mockAccounts, mockEntries, _, service := newReaderFixture()

	ctx := context.Background()
	account := createTestAccount("Caixa", ledger.AccountTypeAsset, nil)

	mockAccounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	mockEntries.On("SumByAccount", mock.Anything, account.ID).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(50), Credits: decimal.NewFromInt(50)}, nil)

	err := service.UpdateAccountBalance(ctx, account.ID)

	assert.NoError(t, err)
	mockAccounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBalanceReaderService_GetBalanceForInvoiceOnAccount(t *testing.T) {
	mockAccounts, mockEntries, _, service := newReaderFixture()

	ctx := context.Background()
	account := createTestAccount("Contas a Receber - Maria Souza", ledger.AccountTypeAsset, nil)
	invoiceID := uuid.New()

	mockAccounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	mockEntries.On("SumByAccountForInvoice", mock.Anything, account.ID, invoiceID).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(210), Credits: decimal.NewFromInt(160)}, nil)

	balance, err := service.GetBalanceForInvoiceOnAccount(ctx, account.ID, invoiceID)

	assert.NoError(t, err)
	assert.True(t, balance.Amount().Equal(decimal.NewFromInt(50)))
}

func TestBalanceReaderService_GetInvoiceStatement(t *testing.T) {
	_, mockEntries, mockInvoices, service := newReaderFixture()

	ctx := context.Background()
	invoice := createTestInvoice(t)
	invoiceID := invoice.ID

	mockInvoices.On("FindByID", mock.Anything, invoiceID).Return(invoice, nil)
	mockEntries.On("SumByTypesForInvoice", mock.Anything, invoiceID,
		ledger.EntryTypeTuitionFee, ledger.EntryTypeEnrollmentFeeCharged, ledger.EntryTypeOpeningBalance).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(250), Credits: decimal.Zero}, nil)
	mockEntries.On("SumByTypesForInvoice", mock.Anything, invoiceID, ledger.EntryTypeDiscountApplied).
		Return(ledger.EntrySums{Debits: decimal.Zero, Credits: decimal.NewFromInt(30)}, nil)
	mockEntries.On("SumByTypesForInvoice", mock.Anything, invoiceID, ledger.EntryTypePenaltyAssessed).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(10), Credits: decimal.Zero}, nil)
	mockEntries.On("SumByTypesForInvoice", mock.Anything, invoiceID, ledger.EntryTypePaymentReceived).
		Return(ledger.EntrySums{Debits: decimal.Zero, Credits: decimal.NewFromInt(150)}, nil)
	mockEntries.On("SumByTypesForInvoice", mock.Anything, invoiceID, ledger.EntryTypeRefundIssued).
		Return(ledger.EntrySums{Debits: decimal.NewFromInt(20), Credits: decimal.Zero}, nil)

	statement, err := service.GetInvoiceStatement(ctx, invoiceID)

	require.NoError(t, err)
	assert.Equal(t, invoiceID, statement.InvoiceID)
	assert.True(t, statement.OriginalAmount.Equal(decimal.NewFromInt(250)))
	assert.True(t, statement.Discounts.Equal(decimal.NewFromInt(30)))
	assert.True(t, statement.Penalties.Equal(decimal.NewFromInt(10)))
	assert.True(t, statement.PaymentsReceived.Equal(decimal.NewFromInt(130)))
	assert.True(t, statement.BalanceDue.Equal(decimal.NewFromInt(100)))
	mockEntries.AssertExpectations(t)
}

func TestBalanceReaderService_GetInvoiceStatement_NoActivity(t *testing.T) {
	_, mockEntries, mockInvoices, service := newReaderFixture()

	ctx := context.Background()
	invoice := createTestInvoice(t)
	invoiceID := invoice.ID

	mockInvoices.On("FindByID", mock.Anything, invoiceID).Return(invoice, nil)
	mockEntries.On("SumByTypesForInvoice", mock.Anything, invoiceID,
		ledger.EntryTypeTuitionFee, ledger.EntryTypeEnrollmentFeeCharged, ledger.EntryTypeOpeningBalance).
		Return(ledger.EntrySums{Debits: decimal.Zero, Credits: decimal.Zero}, nil)
	mockEntries.On("SumByTypesForInvoice", mock.Anything, invoiceID, mock.Anything).
		Return(ledger.EntrySums{Debits: decimal.Zero, Credits: decimal.Zero}, nil)

	statement, err := service.GetInvoiceStatement(ctx, invoiceID)

	require.NoError(t, err)
	assert.True(t, statement.OriginalAmount.IsZero())
	assert.True(t, statement.BalanceDue.IsZero())
}

func TestBalanceReaderService_GetInvoiceStatement_InvoiceNotFound(t *testing.T) {
	_, mockEntries, mockInvoices, service := newReaderFixture()

	ctx := context.Background()
	invoiceID := uuid.New()

	mockInvoices.On("FindByID", mock.Anything, invoiceID).Return(nil, shared.ErrNotFound)

	statement, err := service.GetInvoiceStatement(ctx, invoiceID)

	assert.Error(t, err)
	assert.Nil(t, statement)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	mockEntries.AssertNotCalled(t, "SumByTypesForInvoice", mock.Anything, mock.Anything, mock.Anything)
}
