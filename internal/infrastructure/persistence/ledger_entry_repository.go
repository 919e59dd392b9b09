package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// The ledger is append-only: the repository exposes no update or delete.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create appends entries to the ledger
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entries ...*ledger.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entryModels := make([]models.LedgerEntryModel, len(entries))
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
		entryModels[i].FromDomain(entry)
	}
	return r.db.WithContext(ctx).Create(&entryModels).Error
}

// FindByID finds a ledger entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns all entries referencing the account, oldest first
func (r *GormLedgerEntryRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("transaction_date ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindByInvoice returns all entries tagged with the invoice, oldest first
func (r *GormLedgerEntryRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("transaction_date ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindAll finds entries matching the filter
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, filter ledger.LedgerEntryFilter) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}), filter)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// SumByAccount totals debit and credit amounts over all entries of the account
func (r *GormLedgerEntryRepository) SumByAccount(ctx context.Context, accountID uuid.UUID) (ledger.EntrySums, error) {
	return r.sum(r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("account_id = ?", accountID))
}

// SumByAccountForInvoice totals debit and credit amounts over the account's
// entries tagged with the given invoice
func (r *GormLedgerEntryRepository) SumByAccountForInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (ledger.EntrySums, error) {
	return r.sum(r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("account_id = ? AND invoice_id = ?", accountID, invoiceID))
}

// SumByTypesForInvoice totals debit and credit amounts over the invoice's
// entries of the given types, across all accounts
func (r *GormLedgerEntryRepository) SumByTypesForInvoice(ctx context.Context, invoiceID uuid.UUID, types ...ledger.EntryType) (ledger.EntrySums, error) {
	if len(types) == 0 {
		return ledger.EntrySums{}, nil
	}
	return r.sum(r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("invoice_id = ? AND type IN ?", invoiceID, types))
}

func (r *GormLedgerEntryRepository) sum(query *gorm.DB) (ledger.EntrySums, error) {
	var sums ledger.EntrySums
	if err := query.
		Select("COALESCE(SUM(debit_amount), 0) as debits, COALESCE(SUM(credit_amount), 0) as credits").
		Scan(&sums).Error; err != nil {
		return ledger.EntrySums{}, err
	}
	return sums, nil
}

func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter ledger.LedgerEntryFilter) *gorm.DB {
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.PaymentID != nil {
		query = query.Where("payment_id = ?", *filter.PaymentID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}
	return applyPagination(query, filter.Filter, LedgerEntrySortFields, "transaction_date")
}

func toDomainEntries(entryModels []models.LedgerEntryModel) []ledger.LedgerEntry {
	entries := make([]ledger.LedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries
}
