package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/partner"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormResponsibleRepository implements ResponsibleRepository using GORM
type GormResponsibleRepository struct {
	db *gorm.DB
}

// NewGormResponsibleRepository creates a new GormResponsibleRepository
func NewGormResponsibleRepository(db *gorm.DB) *GormResponsibleRepository {
	return &GormResponsibleRepository{db: db}
}

// FindByID finds a responsible party by its ID
func (r *GormResponsibleRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Responsible, error) {
	var model models.ResponsibleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a responsible party. The unique index on the
// document column maps a duplicate CPF to shared.ErrAlreadyExists.
func (r *GormResponsibleRepository) Save(ctx context.Context, responsible *partner.Responsible) error {
	model := models.ResponsibleModelFromDomain(responsible)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}
