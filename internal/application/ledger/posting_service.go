package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PostTransactionRequest describes one double-entry posting
type PostTransactionRequest struct {
	InvoiceID       *uuid.UUID
	PaymentID       *uuid.UUID
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	Amount          valueobject.Money
	TransactionDate time.Time
	Description     string
	Type            ledger.EntryType
}

// PostingMetricsRecorder receives posting counters. Implemented by
// telemetry.BillingMetrics; a nil recorder disables instrumentation.
type PostingMetricsRecorder interface {
	RecordPosting(ctx context.Context, debitAccountType, creditAccountType string)
}

// LedgerPostingService writes balanced debit/credit entry pairs and keeps the
// cached balances of the affected accounts consistent with the ledger.
type LedgerPostingService struct {
	uow     ledger.UnitOfWork
	events  shared.EventPublisher
	metrics PostingMetricsRecorder
	logger  *zap.Logger
}

// SetMetricsRecorder enables posting metrics emission. Optional.
func (s *LedgerPostingService) SetMetricsRecorder(recorder PostingMetricsRecorder) {
	s.metrics = recorder
}

// NewLedgerPostingService creates a new LedgerPostingService. The event
// publisher may be nil when no subscriber cares about postings.
func NewLedgerPostingService(uow ledger.UnitOfWork, events shared.EventPublisher, logger *zap.Logger) *LedgerPostingService {
	return &LedgerPostingService{
		uow:    uow,
		events: events,
		logger: logger,
	}
}

// PostTransaction records one financial event as a balanced pair of ledger
// entries and refreshes both account balances, all inside a single database
// transaction. Any validation failure aborts before anything is written; any
// persistence failure rolls back entries and balance updates together.
func (s *LedgerPostingService) PostTransaction(ctx context.Context, req PostTransactionRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_posting", "post_transaction")
	defer span.End()

	telemetry.SetAttributes(span,
		"debit_account_id", req.DebitAccountID.String(),
		"credit_account_id", req.CreditAccountID.String(),
		"amount", req.Amount.StringFixed(2),
		"entry_type", string(req.Type),
	)

	// All invariants are checked at pair construction, before any write.
	pair, err := ledger.NewEntryPair(
		req.DebitAccountID,
		req.CreditAccountID,
		req.Amount,
		req.TransactionDate,
		req.Description,
		req.Type,
		req.InvoiceID,
		req.PaymentID,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	var debitType, creditType ledger.AccountType
	err = s.uow.Execute(ctx, func(repos ledger.TxRepositories) error {
		debitAccount, err := repos.Accounts.FindByID(ctx, req.DebitAccountID)
		if err != nil {
			return fmt.Errorf("debit account: %w", err)
		}
		creditAccount, err := repos.Accounts.FindByID(ctx, req.CreditAccountID)
		if err != nil {
			return fmt.Errorf("credit account: %w", err)
		}
		debitType, creditType = debitAccount.Type, creditAccount.Type

		if err := repos.Entries.Create(ctx, pair.Debit, pair.Credit); err != nil {
			return fmt.Errorf("failed to write entry pair: %w", err)
		}

		// Balances are re-derived from the ledger inside the same transaction,
		// not incremented, so a concurrent posting can never be lost.
		if err := refreshAccountBalance(ctx, repos.Accounts, repos.Entries, debitAccount); err != nil {
			return fmt.Errorf("failed to refresh debit account balance: %w", err)
		}
		if err := refreshAccountBalance(ctx, repos.Accounts, repos.Entries, creditAccount); err != nil {
			return fmt.Errorf("failed to refresh credit account balance: %w", err)
		}

		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordPosting(ctx, string(debitType), string(creditType))
	}

	s.logger.Info("transaction posted",
		zap.String("debit_account_id", req.DebitAccountID.String()),
		zap.String("credit_account_id", req.CreditAccountID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("entry_type", string(req.Type)),
	)

	if s.events != nil {
		if err := s.events.Publish(ctx, ledger.NewTransactionPostedEvent(pair)); err != nil {
			// The posting is committed; a failed publish is not a posting failure.
			s.logger.Warn("failed to publish transaction posted event", zap.Error(err))
		}
	}

	return nil
}

// refreshAccountBalance recomputes the account's balance from its entries and
// persists the cached value when it changed.
func refreshAccountBalance(
	ctx context.Context,
	accounts ledger.AccountRepository,
	entries ledger.LedgerEntryRepository,
	account *ledger.Account,
) error {
	sums, err := entries.SumByAccount(ctx, account.ID)
	if err != nil {
		return err
	}

	balance := account.Type.BalanceFrom(sums.Debits, sums.Credits)
	if !account.RefreshBalance(balance) {
		return nil
	}
	return accounts.Save(ctx, account)
}
