package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// OverdueSweeper marks pending invoices past their due date as overdue
type OverdueSweeper interface {
	MarkOverdueInvoices(ctx context.Context) (int, error)
}

// BalanceRefresher recomputes an account's cached balance from its entries
type BalanceRefresher interface {
	UpdateAccountBalance(ctx context.Context, accountID uuid.UUID) error
}

// BillingExecutor dispatches maintenance jobs to the application services
type BillingExecutor struct {
	sweeper   OverdueSweeper
	refresher BalanceRefresher
	accounts  ledger.AccountRepository
	logger    *zap.Logger
}

// NewBillingExecutor creates a new billing executor
func NewBillingExecutor(
	sweeper OverdueSweeper,
	refresher BalanceRefresher,
	accounts ledger.AccountRepository,
	logger *zap.Logger,
) *BillingExecutor {
	return &BillingExecutor{
		sweeper:   sweeper,
		refresher: refresher,
		accounts:  accounts,
		logger:    logger,
	}
}

// Execute runs the maintenance job
func (e *BillingExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeOverdueSweep:
		return e.runOverdueSweep(ctx, job)
	case JobTypeBalanceRefresh:
		return e.runBalanceRefresh(ctx, job)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidJobType, job.Type)
	}
}

func (e *BillingExecutor) runOverdueSweep(ctx context.Context, job *Job) error {
	marked, err := e.sweeper.MarkOverdueInvoices(ctx)
	if err != nil {
		return fmt.Errorf("overdue sweep: %w", err)
	}

	e.logger.Info("Overdue sweep completed",
		zap.String("job_id", job.ID.String()),
		zap.Int("invoices_marked", marked),
	)
	return nil
}

func (e *BillingExecutor) runBalanceRefresh(ctx context.Context, job *Job) error {
	refreshed := 0
	failed := 0

	page := 1
	const pageSize = 200

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		accounts, err := e.accounts.FindAll(ctx, ledger.AccountFilter{
			Filter: shared.Filter{Page: page, PageSize: pageSize, OrderBy: "id"},
		})
		if err != nil {
			return fmt.Errorf("balance refresh: list accounts: %w", err)
		}
		if len(accounts) == 0 {
			break
		}

		for i := range accounts {
			if err := e.refresher.UpdateAccountBalance(ctx, accounts[i].ID); err != nil {
				e.logger.Error("Failed to refresh account balance",
					zap.String("account_id", accounts[i].ID.String()),
					zap.Error(err),
				)
				failed++
				continue
			}
			refreshed++
		}

		if len(accounts) < pageSize {
			break
		}
		page++
	}

	e.logger.Info("Balance refresh completed",
		zap.String("job_id", job.ID.String()),
		zap.Int("accounts_refreshed", refreshed),
		zap.Int("accounts_failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("balance refresh: %d accounts failed", failed)
	}
	return nil
}

// Ensure BillingExecutor implements JobExecutor
var _ JobExecutor = (*BillingExecutor)(nil)
