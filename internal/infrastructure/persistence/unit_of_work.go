package persistence

import (
	"context"

	"github.com/schoolerp/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormUnitOfWork implements ledger.UnitOfWork on a GORM database transaction.
// The posting service uses it to write a balanced entry pair and refresh the
// touched account balances atomically.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn against repositories bound to one transaction. Any error
// returned by fn rolls back everything written inside it.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos ledger.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ledger.TxRepositories{
			Accounts: NewGormAccountRepository(tx),
			Entries:  NewGormLedgerEntryRepository(tx),
		})
	})
}
