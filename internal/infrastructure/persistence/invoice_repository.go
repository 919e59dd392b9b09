package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormInvoiceRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID loads an invoice with its items, attached discounts and payment
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Discounts").
		Preload("Payment").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByResponsibleAndMonth finds the invoice issued to a responsible for a
// reference month
func (r *GormInvoiceRepository) FindByResponsibleAndMonth(ctx context.Context, responsibleID uuid.UUID, referenceMonth string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Discounts").
		Preload("Payment").
		Where("responsible_id = ? AND reference_month = ?", responsibleID, referenceMonth).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Preload("Items").
		Preload("Discounts").
		Preload("Payment")

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// FindPendingPastDue finds pending invoices whose due date is before the
// given moment, for overdue sweeps
func (r *GormInvoiceRepository) FindPendingPastDue(ctx context.Context, now time.Time) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Discounts").
		Preload("Payment").
		Where("status = ? AND due_date < ?", billing.InvoiceStatusPending, now).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// Save creates or updates the invoice together with its owned items and
// discount attachments. Payment rows belong to the payment repository and are
// only read here.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	events := invoice.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Discounts", "Payment").Save(model).Error; err != nil {
			return err
		}

		// Replace owned items: delete rows dropped from the aggregate, then
		// upsert the current ones.
		currentItemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			currentItemIDs[i] = item.ID
		}
		itemScope := tx.Where("invoice_id = ?", model.ID)
		if len(currentItemIDs) > 0 {
			itemScope = itemScope.Where("id NOT IN ?", currentItemIDs)
		}
		if err := itemScope.Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		for i := range model.Items {
			model.Items[i].InvoiceID = model.ID
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}

		// Sync discount attachments through the join table.
		discountModels := make([]models.DiscountModel, len(invoice.Discounts))
		for i := range invoice.Discounts {
			discountModels[i].FromDomain(&invoice.Discounts[i])
		}
		if err := tx.Model(model).Association("Discounts").Replace(&discountModels); err != nil {
			return err
		}

		// Save events to the outbox within the same transaction
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}
	invoice.ClearDomainEvents()
	return nil
}

// Delete removes an invoice and cascades to its items and discount attachments
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM invoice_discounts WHERE invoice_model_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.ResponsibleID != nil {
		query = query.Where("responsible_id = ?", *filter.ResponsibleID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ReferenceMonth != nil {
		query = query.Where("reference_month = ?", *filter.ReferenceMonth)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	return applyPagination(query, filter.Filter, InvoiceSortFields, "due_date")
}

func toDomainInvoices(invoiceModels []models.InvoiceModel) []billing.Invoice {
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices
}
