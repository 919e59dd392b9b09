package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDiscountRepository implements DiscountRepository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// FindByID finds a discount by its ID
func (r *GormDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Discount, error) {
	var model models.DiscountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns discounts whose validity window is open at the given moment
func (r *GormDiscountRepository) FindActive(ctx context.Context, at time.Time) ([]billing.Discount, error) {
	var discountModels []models.DiscountModel
	if err := r.db.WithContext(ctx).
		Where("valid_until IS NULL OR valid_until >= ?", at).
		Order("name ASC").
		Find(&discountModels).Error; err != nil {
		return nil, err
	}

	discounts := make([]billing.Discount, len(discountModels))
	for i, model := range discountModels {
		discounts[i] = *model.ToDomain()
	}
	return discounts, nil
}

// Save creates or updates a discount
func (r *GormDiscountRepository) Save(ctx context.Context, discount *billing.Discount) error {
	model := models.DiscountModelFromDomain(discount)
	return r.db.WithContext(ctx).Save(model).Error
}
