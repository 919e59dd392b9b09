package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceStatement summarizes an invoice's ledger activity on its receivable
// account: what was charged, what was taken off, and what is still due.
type InvoiceStatement struct {
	InvoiceID        uuid.UUID            `json:"invoice_id"`
	OriginalAmount   decimal.Decimal      `json:"original_amount"`
	Discounts        decimal.Decimal      `json:"discounts"`
	Penalties        decimal.Decimal      `json:"penalties"`
	PaymentsReceived decimal.Decimal      `json:"payments_received"`
	BalanceDue       decimal.Decimal      `json:"balance_due"`
	Currency         valueobject.Currency `json:"currency"`
}

// BalanceReaderService is the authoritative source for account balances. The
// cached Account.Balance is a projection refreshed from the computations here;
// it is never trusted as ground truth.
type BalanceReaderService struct {
	accounts ledger.AccountRepository
	entries  ledger.LedgerEntryRepository
	invoices billing.InvoiceRepository
	logger   *zap.Logger
}

// NewBalanceReaderService creates a new BalanceReaderService
func NewBalanceReaderService(
	accounts ledger.AccountRepository,
	entries ledger.LedgerEntryRepository,
	invoices billing.InvoiceRepository,
	logger *zap.Logger,
) *BalanceReaderService {
	return &BalanceReaderService{
		accounts: accounts,
		entries:  entries,
		invoices: invoices,
		logger:   logger,
	}
}

// GetAccountBalance computes the account balance from all of its ledger
// entries: debits minus credits for debit-normal types (ASSET, EXPENSE),
// credits minus debits for the rest. Fails with NotFound for unknown accounts.
func (s *BalanceReaderService) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (valueobject.Money, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance_reader", "get_account_balance")
	defer span.End()

	telemetry.SetAttribute(span, "account_id", accountID.String())

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return valueobject.Money{}, err
	}

	sums, err := s.entries.SumByAccount(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return valueobject.Money{}, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	return valueobject.NewMoneyBRL(account.Type.BalanceFrom(sums.Debits, sums.Credits)), nil
}

// UpdateAccountBalance recomputes the authoritative balance and writes the
// cached projection when it differs from the stored value.
func (s *BalanceReaderService) UpdateAccountBalance(ctx context.Context, accountID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance_reader", "update_account_balance")
	defer span.End()

	telemetry.SetAttribute(span, "account_id", accountID.String())

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := refreshAccountBalance(ctx, s.accounts, s.entries, account); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to refresh account balance: %w", err)
	}
	return nil
}

// GetBalanceForInvoiceOnAccount computes the account-type-signed balance over
// the account's entries tagged with the given invoice.
func (s *BalanceReaderService) GetBalanceForInvoiceOnAccount(ctx context.Context, accountID, invoiceID uuid.UUID) (valueobject.Money, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance_reader", "get_balance_for_invoice")
	defer span.End()

	telemetry.SetAttributes(span,
		"account_id", accountID.String(),
		"invoice_id", invoiceID.String(),
	)

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return valueobject.Money{}, err
	}

	sums, err := s.entries.SumByAccountForInvoice(ctx, accountID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return valueobject.Money{}, fmt.Errorf("failed to sum invoice entries: %w", err)
	}

	return valueobject.NewMoneyBRL(account.Type.BalanceFrom(sums.Debits, sums.Credits)), nil
}

// GetInvoiceStatement aggregates the invoice's ledger entries into a
// per-invoice statement. Charges and penalties are debit-side on the
// receivable account; discounts, payments and refunds are credit-side
// adjustments against it.
func (s *BalanceReaderService) GetInvoiceStatement(ctx context.Context, invoiceID uuid.UUID) (*InvoiceStatement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance_reader", "get_invoice_statement")
	defer span.End()

	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	if _, err := s.invoices.FindByID(ctx, invoiceID); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	charges, err := s.entries.SumByTypesForInvoice(ctx, invoiceID,
		ledger.EntryTypeTuitionFee, ledger.EntryTypeEnrollmentFeeCharged, ledger.EntryTypeOpeningBalance)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum charges: %w", err)
	}

	discounts, err := s.entries.SumByTypesForInvoice(ctx, invoiceID, ledger.EntryTypeDiscountApplied)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum discounts: %w", err)
	}

	penalties, err := s.entries.SumByTypesForInvoice(ctx, invoiceID, ledger.EntryTypePenaltyAssessed)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum penalties: %w", err)
	}

	payments, err := s.entries.SumByTypesForInvoice(ctx, invoiceID, ledger.EntryTypePaymentReceived)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}

	refunds, err := s.entries.SumByTypesForInvoice(ctx, invoiceID, ledger.EntryTypeRefundIssued)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum refunds: %w", err)
	}

	originalAmount := charges.Debits
	discountTotal := discounts.Credits
	penaltyTotal := penalties.Debits
	paymentsReceived := payments.Credits.Sub(refunds.Debits)
	balanceDue := originalAmount.Add(penaltyTotal).Sub(discountTotal).Sub(paymentsReceived)

	return &InvoiceStatement{
		InvoiceID:        invoiceID,
		OriginalAmount:   originalAmount,
		Discounts:        discountTotal,
		Penalties:        penaltyTotal,
		PaymentsReceived: paymentsReceived,
		BalanceDue:       balanceDue,
		Currency:         valueobject.DefaultCurrency,
	}, nil
}
